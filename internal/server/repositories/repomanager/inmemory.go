package repomanager

import (
	"context"
	"database/sql"

	"github.com/whispervault/whispervault/internal/dbx"
	"github.com/whispervault/whispervault/internal/server/repositories/accounts"
	"github.com/whispervault/whispervault/internal/server/repositories/smscodes"
)

// InMemoryRepositoryManager vends the map-backed repositories. The DBTX
// argument is ignored; every call returns the same shared store, which is
// what tests and single-node development runs want.
type InMemoryRepositoryManager struct {
	accounts *accounts.InMemoryRepository
	smsCodes *smscodes.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		accounts: accounts.NewInMemoryRepository(),
		smsCodes: smscodes.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository { return m.accounts }

func (m *InMemoryRepositoryManager) SMSCodes(db dbx.DBTX) smscodes.Repository { return m.smsCodes }
