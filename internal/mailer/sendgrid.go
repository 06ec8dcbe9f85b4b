package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/metrics"
)

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
	logger   zerolog.Logger
}

// NewSendGrid creates a SendGrid-backed mailer.
func NewSendGrid(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
		logger:   log.WithComponent("mailer"),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(m.fromName, m.from)
	to := mail.NewEmail(msg.ToName, msg.To)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	metrics.RecordMailSent(msg.Template, err)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Str("event", "mailer.send_failed").
			Str("to", msg.To).
			Str("template", msg.Template).
			Msg("failed to send mail")
		return err
	}

	m.logger.Debug().
		Str("event", "mailer.sent").
		Str("to", msg.To).
		Str("template", msg.Template).
		Int("status", resp.StatusCode).
		Msg("mail sent")
	return nil
}
