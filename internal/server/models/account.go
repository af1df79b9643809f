// Package models defines the persistence-layer row types shared by server
// repositories and services.
package models

import "time"

// Account is a registered user record. ConfirmationToken is non-nil only
// until the email is confirmed; TOTPSecret is assigned once at registration.
type Account struct {
	ID                string
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	Phone             *string
	TOTPSecret        string
	ConfirmationToken *string
	EmailConfirmed    bool
	Is2FAEnabled      bool
	PublicKey         *string
	CreatedAt         time.Time
}

// SafeProjection returns the fields of the account that may leave the
// server: no password hash, no TOTP secret, no confirmation token.
func (a *Account) SafeProjection() map[string]any {
	return map[string]any{
		"id":        a.ID,
		"email":     a.Email,
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"phone":     a.Phone,
	}
}
