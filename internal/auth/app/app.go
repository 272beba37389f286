package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/backoffice/internal/auth/http"
	"github.com/aussiebroadwan/backoffice/internal/auth/obs"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/internal/auth/store/drivers/mysql"
	"github.com/aussiebroadwan/backoffice/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/backoffice/internal/auth/token"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// BuildVersion is stamped by the release build with
// -ldflags "-X github.com/aussiebroadwan/backoffice/internal/auth/app.BuildVersion=<tag>".
var BuildVersion = "v0.1.0"

// onlineMaxAge is how long a login stays in the online registry without a
// matching logout.
const onlineMaxAge = 24 * time.Hour

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	kv     *kvx.RedisStore
	tokens token.Manager

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	bootstrapService    *service.BootstrapService
	online              *service.OnlineUsers
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	obs.Init()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}

	if err := app.bootstrap(context.Background()); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mostly for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"session_mode", app.cfg.SessionMode,
		"database_driver", app.cfg.DatabaseDriver,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.kv.Close(); err != nil {
		app.logger.Error("error closing redis", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Close releases the stores of an application that was never Run, e.g. one
// whose Handler is served by a test server.
func (app *Application) Close() {
	app.closeStores()
}

func (app *Application) closeStores() {
	if app.kv != nil {
		_ = app.kv.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

// initDatabase opens the configured driver and applies its schema
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "mysql":
		if app.cfg.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for the mysql driver")
		}
		db, err = mysql.NewStore(app.cfg.DatabaseDSN)
	case "sqlite", "":
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCache connects to the key-value store that holds sessions, blacklist
// entries and the online registry
func (app *Application) initCache() error {
	kv, err := kvx.NewRedisStore(context.Background(), kvx.RedisConfig{
		URL:      app.cfg.RedisURL,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
		Prefix:   app.cfg.RedisPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	app.kv = kv
	return nil
}

// initServices builds the token manager and the business logic services
func (app *Application) initServices() error {
	loader := &service.AuthInfoLoader{Store: app.db}

	resolver := token.NewResolver(token.ResolverConfig{
		Mode:   app.cfg.SessionMode,
		KV:     app.kv,
		Source: loader,
		JWT: token.JWTConfig{
			Secret:     []byte(app.cfg.JWTSecret),
			Issuer:     app.cfg.JWTIssuer,
			AccessTTL:  app.cfg.JWTAccessTTL,
			RefreshTTL: app.cfg.JWTRefreshTTL,
			TokenType:  app.cfg.TokenType,
		},
		Session: token.SessionConfig{
			AccessTTL:  app.cfg.SessionAccessTTL,
			RefreshTTL: app.cfg.SessionRefreshTTL,
			TokenType:  app.cfg.TokenType,
		},
	})

	tokens, err := resolver.Get()
	if err != nil {
		return fmt.Errorf("failed to initialize %s token manager: %w", resolver.Mode(), err)
	}
	app.tokens = tokens
	app.logger.Info("token manager ready", "mode", resolver.Mode())

	app.online = service.NewOnlineUsers(app.kv)
	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: tokens,
		Loader: loader,
		Online: app.online,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Scopes: datascope.NewEngine(app.db.Depts()),
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.online,
		app.logger,
		app.cfg.HousekeepingInterval,
		onlineMaxAge,
	)
	return nil
}

// bootstrap seeds an empty database from the BOOTSTRAP_ADMIN_* settings.
func (app *Application) bootstrap(ctx context.Context) error {
	done, err := app.bootstrapService.IsBootstrapped(ctx)
	if err != nil {
		return fmt.Errorf("failed to check bootstrap state: %w", err)
	}
	if done {
		return nil
	}

	if app.cfg.BootstrapAdminUsername == "" {
		app.logger.Warn("database is empty and BOOTSTRAP_ADMIN_USERNAME is not set, nobody can log in")
		return nil
	}

	id, err := app.bootstrapService.Bootstrap(ctx, domain.BootstrapData{
		AdminUsername: app.cfg.BootstrapAdminUsername,
		AdminPassword: app.cfg.BootstrapAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	app.logger.Info("bootstrapped administrator", "user_id", id, "username", app.cfg.BootstrapAdminUsername)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.kv, app.logger)

	router.Tokens = app.tokens
	router.AuthService = app.authService
	router.UserService = app.userService
	router.Online = app.online
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
