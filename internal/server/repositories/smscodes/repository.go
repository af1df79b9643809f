// Package smscodes provides an expiring store for one-time SMS codes.
// Codes live in the shared database rather than process memory so that
// verification works across server instances and restarts.
package smscodes

import (
	"context"
	"time"

	"github.com/whispervault/whispervault/internal/server/models"
)

// Repository holds at most one pending code per account.
type Repository interface {
	// Upsert stores a code for userID valid for the given duration,
	// replacing any previous code.
	Upsert(ctx context.Context, userID, code string, validity time.Duration) error

	// Find returns the pending, unexpired code for userID, or
	// common.ErrorNotFound.
	Find(ctx context.Context, userID string) (*models.SMSCode, error)

	// Delete removes the pending code after a successful verification
	// (single use).
	Delete(ctx context.Context, userID string) error
}
