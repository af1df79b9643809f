package smscodes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/whispervault/whispervault/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+sms_codes.*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE`).
		WithArgs("u-1", "123456", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), "u-1", "123456", 5*time.Minute); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestFind_Pending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "code", "expires_at"}).
		AddRow("u-1", "123456", time.Now().Add(time.Minute))
	mock.ExpectQuery(`SELECT\s+user_id,\s*code,\s*expires_at\s+FROM\s+sms_codes\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+expires_at\s*>\s*now\(\)`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Code != "123456" {
		t.Fatalf("unexpected code: %+v", got)
	}
}

func TestFind_ExpiredOrMissing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+user_id,\s*code,\s*expires_at\s+FROM\s+sms_codes`).
		WithArgs("u-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "u-2")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+sms_codes\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
