// Package turn holds the per-activity execution context shared by the router,
// the dialog sequencer and the state accessors.
package turn

import (
	"sync"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/google/uuid"
)

// Context carries one inbound activity through a turn and collects the replies sent during it.
type Context struct {
	Activity domain.Activity

	mu      sync.Mutex
	replies []domain.Reply
	values  map[string]any
}

// New creates a turn context for the activity.
// Activities without an id are given one so replies can reference it.
func New(activity domain.Activity) *Context {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	return &Context{
		Activity: activity,
		values:   make(map[string]any),
	}
}

// SendText queues a plain text reply.
func (c *Context) SendText(text string) {
	c.Send(domain.Reply{Text: text})
}

// SendAttachment queues a reply carrying a single attachment.
func (c *Context) SendAttachment(att domain.Attachment) {
	c.Send(domain.Reply{Attachments: []domain.Attachment{att}})
}

// Send queues a reply, filling its id and reply-to id.
func (c *Context) Send(reply domain.Reply) {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	reply.ReplyToID = c.Activity.ID

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, reply)
}

// Responded reports whether anything has been sent during this turn.
func (c *Context) Responded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.replies) > 0
}

// Replies returns a copy of the replies sent so far.
func (c *Context) Replies() []domain.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Reply, len(c.replies))
	copy(out, c.replies)
	return out
}

// Value returns turn-scoped data stored under key.
func (c *Context) Value(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// SetValue stores turn-scoped data; it is discarded when the turn ends.
func (c *Context) SetValue(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
}
