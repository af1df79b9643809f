// Package cli implements the interactive WhisperVault client: account
// onboarding against the server API and local sealing/opening of messages
// with the device identity key.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/whispervault/whispervault/internal/client/client"
	"github.com/whispervault/whispervault/internal/client/config"
	"github.com/whispervault/whispervault/internal/client/keystore"
)

type App struct {
	config       *config.Config
	api          *client.APIClient
	identity     *keystore.IdentityStore
	db           *sql.DB
	reader       *bufio.Reader
	tempToken    string
	sessionToken string
	userID       string
	userEmail    string
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := keystore.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	return &App{
		config:   c,
		api:      client.NewAPIClient(c.ServerURL),
		identity: keystore.NewIdentityStore(keystore.NewSQLiteRepository(db)),
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.sessionToken != ""
}

// setSession records the outcome of a successful second-factor verification.
func (a *App) setSession(s *client.Session) {
	a.sessionToken = s.Token
	a.tempToken = ""
	if id, ok := s.User["id"].(string); ok {
		a.userID = id
	}
	if email, ok := s.User["email"].(string); ok {
		a.userEmail = email
	}
}
