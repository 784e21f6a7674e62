package domain

import (
	"encoding/json"
	"time"
)

// ActivityType discriminates inbound events.
type ActivityType string

const (
	ActivityMessage            ActivityType = "message"
	ActivityConversationUpdate ActivityType = "conversationUpdate"
	ActivityEvent              ActivityType = "event"
)

// ContentTypeAdaptiveCard is the attachment content type of the welcome card.
const ContentTypeAdaptiveCard = "application/vnd.microsoft.card.adaptive"

// Activity is an inbound event received from a channel.
type Activity struct {
	ID             string       `json:"id,omitempty"`
	Type           ActivityType `json:"type"`
	ChannelID      string       `json:"channelId"`
	ConversationID string       `json:"conversationId"`
	UserID         string       `json:"userId"`
	Text           string       `json:"text,omitempty"`
	Timestamp      time.Time    `json:"timestamp,omitempty"`
}

// IsMessage reports whether the activity carries user text.
func (a Activity) IsMessage() bool {
	return a.Type == ActivityMessage
}

// Attachment is an opaque payload attached to a reply (e.g. an adaptive card).
type Attachment struct {
	ContentType string          `json:"contentType"`
	Content     json.RawMessage `json:"content"`
}

// Reply is an outbound message produced during a turn.
type Reply struct {
	ID          string       `json:"id"`
	ReplyToID   string       `json:"replyToId,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
