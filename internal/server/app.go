// Package server initializes and runs the WhisperVault server: configuration,
// database and migrations, notification channels, and the HTTP endpoint with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/whispervault/whispervault/internal/logging"
	"github.com/whispervault/whispervault/internal/server/config"
	"github.com/whispervault/whispervault/internal/server/httpapi"
	"github.com/whispervault/whispervault/internal/server/notify"
	"github.com/whispervault/whispervault/internal/server/repositories/repomanager"
	"github.com/whispervault/whispervault/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	auth    *services.AuthService
	keys    *services.KeyDirectoryService
	handler *httpapi.Handler
	authMW  *httpapi.AuthMiddleware
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		return nil, err
	}
	sms := newSMSSender(cfg, logger)

	auth := services.NewAuthService(db, rm, mailer, sms, cfg, logger)
	keys := services.NewKeyDirectoryService(db, rm)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		auth:    auth,
		keys:    keys,
		handler: httpapi.NewHandler(auth, keys, logger),
		authMW:  httpapi.NewAuthMiddleware([]byte(cfg.SecretKey)),
	}, nil
}

// newMailer picks the SMTP relay when one is configured, otherwise emails are
// written to the log.
func newMailer(cfg *config.Config, logger logging.Logger) (notify.Mailer, error) {
	if cfg.SMTPHost == "" {
		return notify.NewLogMailer(logger), nil
	}
	m, err := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, cfg.ClientOrigin)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	return m, nil
}

func newSMSSender(cfg *config.Config, logger logging.Logger) notify.SMSSender {
	if cfg.TwilioSID == "" {
		return notify.NewLogSender(logger)
	}
	return notify.NewTwilioSender(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler.Routes(app.authMW), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
