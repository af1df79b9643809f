// Package notify delivers out-of-band messages to account holders:
// confirmation emails over SMTP and one-time codes over SMS.
package notify

import "context"

// Mailer sends account confirmation emails.
type Mailer interface {
	// SendConfirmation delivers the confirmation link for token to the given
	// address. When qrDataURL is non-empty the email embeds the authenticator
	// enrollment QR code together with the manual secret.
	SendConfirmation(ctx context.Context, to, token, qrDataURL, secret string) error
}

// SMSSender delivers short text messages to a phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}
