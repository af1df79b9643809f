package models

import "time"

// SMSCode is a pending one-time SMS code. One row per account; verification
// deletes the row, expiry makes it invisible to lookups.
type SMSCode struct {
	UserID    string
	Code      string
	ExpiresAt time.Time
}
