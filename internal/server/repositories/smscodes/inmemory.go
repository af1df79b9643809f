package smscodes

import (
	"context"
	"sync"
	"time"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/server/models"
)

// InMemoryRepository is a map-backed Repository for tests and single-node
// development runs.
type InMemoryRepository struct {
	mu    sync.Mutex
	codes map[string]*models.SMSCode
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{codes: make(map[string]*models.SMSCode)}
}

func (r *InMemoryRepository) Upsert(ctx context.Context, userID, code string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[userID] = &models.SMSCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, userID string) (*models.SMSCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[userID]
	if !ok || time.Now().After(c.ExpiresAt) {
		return nil, common.ErrorNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, userID)
	return nil
}
