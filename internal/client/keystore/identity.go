package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/cryptox"
)

const (
	identityPrivateName = "identity_private"
	identityPublicName  = "identity_public"
)

// IdentityStore owns the device's long-term X25519 key pair.
type IdentityStore struct {
	repo Repository
}

func NewIdentityStore(repo Repository) *IdentityStore {
	return &IdentityStore{repo: repo}
}

// GetOrCreate returns the stored identity key pair, generating and persisting
// one on first use. Repeated calls return the same pair; there is no silent
// rotation.
func (s *IdentityStore) GetOrCreate(ctx context.Context) (*cryptox.KeyPair, error) {
	priv, err := s.repo.Get(ctx, identityPrivateName)
	if err == nil {
		pub, err := s.repo.Get(ctx, identityPublicName)
		if err != nil {
			return nil, fmt.Errorf("identity key store inconsistent: %w", err)
		}
		return cryptox.KeyPairFromBytes(pub, priv)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading identity key: %w", err)
	}

	kp, err := cryptox.NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("error generating identity key: %w", err)
	}
	if err := s.repo.Put(ctx, identityPrivateName, kp.Private[:]); err != nil {
		return nil, fmt.Errorf("error storing identity key: %w", err)
	}
	if err := s.repo.Put(ctx, identityPublicName, kp.Public[:]); err != nil {
		return nil, fmt.Errorf("error storing identity key: %w", err)
	}
	return kp, nil
}
