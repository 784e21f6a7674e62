package ports

import "context"

// EmailSender delivers an HTML email. Delivery semantics belong to the implementation.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
