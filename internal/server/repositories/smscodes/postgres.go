package smscodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/dbx"
	"github.com/whispervault/whispervault/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, code string, validity time.Duration) error {
	query := `
		INSERT INTO sms_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, code, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, userID string) (*models.SMSCode, error) {
	query := `
		SELECT user_id, code, expires_at
		FROM sms_codes
		WHERE user_id = $1 AND expires_at > now()
	`
	c := &models.SMSCode{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &c.Code, &c.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM sms_codes WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
