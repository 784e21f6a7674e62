package state

import (
	"fmt"

	"github.com/aretw0/simplebot/pkg/domain"
)

// KeyFunc derives the storage key of a scope from the inbound activity.
type KeyFunc func(domain.Activity) (string, error)

// UserScope keys state by channel and user.
func UserScope(a domain.Activity) (string, error) {
	if a.ChannelID == "" || a.UserID == "" {
		return "", fmt.Errorf("%w: user scope needs channelId and userId", domain.ErrMissingScope)
	}
	return a.ChannelID + "/users/" + a.UserID, nil
}

// ConversationScope keys state by channel and conversation.
func ConversationScope(a domain.Activity) (string, error) {
	if a.ChannelID == "" || a.ConversationID == "" {
		return "", fmt.Errorf("%w: conversation scope needs channelId and conversationId", domain.ErrMissingScope)
	}
	return a.ChannelID + "/conversations/" + a.ConversationID, nil
}
