// Package outbox provides EmailSender adapters that do not leave the process.
// Real delivery is expected to be plugged in by the host.
package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/simplebot/internal/logging"
)

// Message is a recorded email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	SentAt   time.Time
}

// Recorder keeps every message in memory. Tests and the console chat use it.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes subsequent Send calls fail with err (nil restores success).
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Send records the message.
func (r *Recorder) Send(ctx context.Context, to, subject, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, Message{To: to, Subject: subject, HTMLBody: htmlBody, SentAt: time.Now()})
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// LogSender writes each message to the logger instead of delivering it.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger discards everything.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.logger.InfoContext(ctx, "Email queued", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
