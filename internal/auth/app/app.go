package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aurorahq/standardauth/internal/auth/http"
	"github.com/aurorahq/standardauth/internal/auth/service"
	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/internal/auth/store/drivers/sqlite"
	"github.com/aurorahq/standardauth/pkg/cipherx"
	"github.com/aurorahq/standardauth/pkg/slogx"
	"github.com/aurorahq/standardauth/pkg/tokenx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the whole credential service together: database, cipher,
// services, HTTP server, background housekeeping.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	cipher *cipherx.Cipher
	issuer *tokenx.Issuer

	authService         *service.AuthService
	accountService      *service.AccountService
	directoryService    *service.DirectoryService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "standardauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCipher(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("standardauth starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping, and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down standardauth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("standardauth stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initCipher() error {
	secret, err := cipherx.LoadOrGenerateSecret(app.cfg.SecretFile)
	if err != nil {
		return fmt.Errorf("failed to load cipher secret: %w", err)
	}

	app.cipher = cipherx.NewWithLegacy(secret, app.cfg.LegacySecret)
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:  app.db,
		Cipher: app.cipher,
	}

	app.accountService = &service.AccountService{
		Store:  app.db,
		Cipher: app.cipher,
	}
	app.directoryService = &service.DirectoryService{
		Store:    app.db,
		Accounts: app.accountService,
	}
	app.accountService.Users = app.directoryService

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	tokenSecret := app.cfg.TokenSecret
	if tokenSecret == "" {
		// Dev convenience only; prod deployments must set AUTH_TOKEN_SECRET.
		tokenSecret = "standardauth-dev-secret"
		app.logger.Warn("AUTH_TOKEN_SECRET not set, using insecure dev secret")
	}
	app.issuer = &tokenx.Issuer{
		Secret:      []byte(tokenSecret),
		Issuer:      app.cfg.Issuer,
		SessionTTL:  app.cfg.SessionTTL,
		RememberTTL: app.cfg.RememberTTL,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.DirectoryService = app.directoryService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
