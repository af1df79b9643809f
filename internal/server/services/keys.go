package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/server/repositories/repomanager"
)

// KeyDirectoryService is the public-key directory: authenticated users
// publish their encryption public key, anyone with a session can look up
// anyone else's.
type KeyDirectoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewKeyDirectoryService(db *sql.DB, m repomanager.RepositoryManager) *KeyDirectoryService {
	return &KeyDirectoryService{db: db, repomanager: m}
}

// SetPublicKey stores the caller's public key, replacing any previous one.
func (s *KeyDirectoryService) SetPublicKey(ctx context.Context, userID, publicKey string) error {
	if publicKey == "" {
		return fmt.Errorf("publicKey required: %w", common.ErrorValidation)
	}
	repo := s.repomanager.Accounts(s.db)
	if err := repo.SetPublicKey(ctx, userID, publicKey); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return fmt.Errorf("error storing public key: %w", err)
	}
	return nil
}

// GetPublicKey returns the published key for userID, or nil when the user is
// unknown or has not published one. Lookups never distinguish the two cases.
func (s *KeyDirectoryService) GetPublicKey(ctx context.Context, userID string) (*string, error) {
	key, err := s.repomanager.Accounts(s.db).GetPublicKey(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error reading public key: %w", err)
	}
	return key, nil
}
