// Package mailer sends transactional mail. The SendGrid sender is used when
// an API key is configured; otherwise a logging no-op keeps callers working.
package mailer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/causewayhq/causeway/internal/log"
)

// Message is one outbound mail.
type Message struct {
	To       string
	ToName   string
	Subject  string
	Template string
	Plain    string
	HTML     string
}

// Mailer sends a message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NoopMailer logs instead of sending. It stands in whenever no provider is
// configured so mail call sites never need nil checks.
type NoopMailer struct {
	logger zerolog.Logger
}

// NewNoop creates a logging no-op mailer.
func NewNoop() *NoopMailer {
	return &NoopMailer{logger: log.WithComponent("mailer")}
}

func (m *NoopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("event", "mailer.noop_send").
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("template", msg.Template).
		Msg("mail not sent, no provider configured")
	return nil
}
