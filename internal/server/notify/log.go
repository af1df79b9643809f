package notify

import (
	"context"

	"github.com/whispervault/whispervault/internal/logging"
)

// LogMailer writes confirmation emails to the log instead of sending them.
// Used in development when no SMTP relay is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, to, token, qrDataURL, secret string) error {
	m.log.Info(ctx, "confirmation email (not sent)", "to", to, "token", token, "secret", secret)
	return nil
}

// LogSender writes SMS bodies to the log instead of sending them.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, to, body string) error {
	s.log.Info(ctx, "sms (not sent)", "to", to, "body", body)
	return nil
}
