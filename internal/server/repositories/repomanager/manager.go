package repomanager

import (
	"context"
	"database/sql"

	"github.com/whispervault/whispervault/internal/dbx"
	"github.com/whispervault/whispervault/internal/server/repositories/accounts"
	"github.com/whispervault/whispervault/internal/server/repositories/smscodes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	SMSCodes(db dbx.DBTX) smscodes.Repository
}
