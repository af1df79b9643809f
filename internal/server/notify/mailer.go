package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPMailer sends confirmation emails through an SMTP relay.
type SMTPMailer struct {
	client       *mail.Client
	from         string
	clientOrigin string
}

// NewSMTPMailer dials nothing up front; the connection is established per send.
func NewSMTPMailer(host string, port int, user, password, from, clientOrigin string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from, clientOrigin: clientOrigin}, nil
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, to, token, qrDataURL, secret string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject("Confirm your WhisperVault account")
	msg.SetBodyString(mail.TypeTextHTML, confirmationBody(m.clientOrigin, token, qrDataURL, secret))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// confirmationBody renders the HTML body. The link points at the SPA
// confirmation route, not the API.
func confirmationBody(clientOrigin, token, qrDataURL, secret string) string {
	url := fmt.Sprintf("%s/confirm/%s", clientOrigin, token)
	body := fmt.Sprintf(`<p>Click <a href="%s">here</a> to confirm your account.</p>`, url)
	if qrDataURL != "" {
		body += fmt.Sprintf(`<p>Scan this QR code in your authenticator app:</p><img src='%s' alt='2FA QR Code' /><p>Or enter this code manually: <b>%s</b></p>`, qrDataURL, secret)
	}
	body += `<p>After confirming your email, you will be required to use 2FA to log in.</p>`
	return body
}
