// Package keystore persists the device-local identity keys in sqlite.
package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/dbx"
)

// Repository is a small named-blob store. Get returns common.ErrorNotFound
// for unknown names.
type Repository interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, value []byte) error
}

// SQLiteRepository implements Repository over the client database.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) ([]byte, error) {
	query := `SELECT value FROM keystore WHERE name = ?`
	var value []byte
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return value, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, name string, value []byte) error {
	query := `
		INSERT INTO keystore (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
