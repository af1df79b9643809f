// Package accounts provides storage for user account records.
package accounts

import (
	"context"

	"github.com/whispervault/whispervault/internal/server/models"
)

// Repository is the account store consumed by the auth flows. Lookups that
// find nothing return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByConfirmationToken matches the token by exact equality. Token
	// uniqueness is a generation-time probabilistic guarantee, not a schema
	// constraint, so this is a plain column match.
	GetByConfirmationToken(ctx context.Context, token string) (*models.Account, error)

	// ConfirmEmail marks the account confirmed and clears its confirmation
	// token in a single atomic update.
	ConfirmEmail(ctx context.Context, id string) error

	SetConfirmationToken(ctx context.Context, id, token string) error
	SetPublicKey(ctx context.Context, id, publicKey string) error

	// GetPublicKey returns nil (without error) when the account does not
	// exist or has not published a key.
	GetPublicKey(ctx context.Context, id string) (*string, error)
}
