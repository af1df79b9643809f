package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "phone",
		"totp_secret", "confirmation_token", "email_confirmed", "is_2fa_enabled",
		"public_key", "created_at",
	})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+accounts\s*\(.*\)\s*VALUES\s*\(.*\)\s*RETURNING\s+created_at\s*$`

	mock.ExpectQuery(q).
		WithArgs("id-1", "alice@example.com", "hash", "Alice", "Smith", nil,
			"SECRET", "tok", false, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	tok := "tok"
	a := &models.Account{
		ID: "id-1", Email: "alice@example.com", PasswordHash: "hash",
		FirstName: "Alice", LastName: "Smith", TOTPSecret: "SECRET",
		ConfirmationToken: &tok, Is2FAEnabled: true,
	}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be populated")
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := accountRows().AddRow("id-1", "alice@example.com", "hash", "Alice", "Smith",
		nil, "SECRET", nil, true, true, nil, time.Now())
	mock.ExpectQuery(`SELECT\s+.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "id-1" || !got.EmailConfirmed {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByConfirmationToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+accounts\s+WHERE\s+confirmation_token\s*=\s*\$1`).
		WithArgs("stale").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByConfirmationToken(context.Background(), "stale")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestConfirmEmail_AtomicUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+email_confirmed\s*=\s*TRUE,\s*confirmation_token\s*=\s*NULL\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ConfirmEmail(context.Background(), "id-1"); err != nil {
		t.Fatalf("ConfirmEmail error: %v", err)
	}
}

func TestConfirmEmail_MissingAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+email_confirmed`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConfirmEmail(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetPublicKey_UnknownAccountIsNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+public_key\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	key, err := repo.GetPublicKey(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetPublicKey error: %v", err)
	}
	if key != nil {
		t.Fatalf("expected nil key for unknown account, got %v", *key)
	}
}

func TestGetPublicKey_Published(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+public_key\s+FROM\s+accounts`).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"public_key"}).AddRow("b64key"))

	key, err := repo.GetPublicKey(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("GetPublicKey error: %v", err)
	}
	if key == nil || *key != "b64key" {
		t.Fatalf("unexpected key: %v", key)
	}
}
