package accounts

import (
	"context"
	"sync"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used by tests and the
// in-memory repository manager.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]*models.Account)}
}

func clone(a *models.Account) *models.Account {
	c := *a
	if a.Phone != nil {
		p := *a.Phone
		c.Phone = &p
	}
	if a.ConfirmationToken != nil {
		t := *a.ConfirmationToken
		c.ConfirmationToken = &t
	}
	if a.PublicKey != nil {
		k := *a.PublicKey
		c.PublicKey = &k
	}
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.accounts[account.ID] = clone(account)
	return account, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		return clone(a), nil
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByConfirmationToken(ctx context.Context, token string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ConfirmationToken != nil && *a.ConfirmationToken == token {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) ConfirmEmail(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.EmailConfirmed = true
	a.ConfirmationToken = nil
	return nil
}

func (r *InMemoryRepository) SetConfirmationToken(ctx context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.ConfirmationToken = &token
	return nil
}

func (r *InMemoryRepository) SetPublicKey(ctx context.Context, id, publicKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PublicKey = &publicKey
	return nil
}

func (r *InMemoryRepository) GetPublicKey(ctx context.Context, id string) (*string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok || a.PublicKey == nil {
		return nil, nil
	}
	k := *a.PublicKey
	return &k, nil
}
