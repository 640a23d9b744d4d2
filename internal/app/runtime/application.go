// Package runtime wires configuration, storage, services, and the HTTP
// server into a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	app "github.com/feinhq/fein/internal/app"
	"github.com/feinhq/fein/internal/app/auth"
	"github.com/feinhq/fein/internal/app/httpapi"
	"github.com/feinhq/fein/internal/app/services/reports"
	"github.com/feinhq/fein/internal/app/storage/postgres"
	"github.com/feinhq/fein/internal/config"
	"github.com/feinhq/fein/internal/logging"
	"github.com/feinhq/fein/internal/metrics"
	"github.com/feinhq/fein/internal/middleware"
)

// Application owns the process-level wiring and the HTTP server lifecycle.
type Application struct {
	cfg     *config.Config
	log     *logging.Logger
	app     *app.Application
	server  *http.Server
	db      *sql.DB
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
}

// Options tweak how NewApplication builds the runtime.
type Options struct {
	// InMemory skips the database entirely and serves from memory stores.
	// Useful for local development and smoke tests.
	InMemory bool
}

// NewApplication builds the full runtime from configuration.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.Output == "stderr" {
		logCfg.Output = os.Stderr
	}
	log := logging.New("fein", logCfg)

	var (
		db     *sql.DB
		stores app.Stores
	)
	if !opts.InMemory {
		opened, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := postgres.Migrate(opened); err != nil {
			opened.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		store := postgres.New(opened)
		db = opened
		stores = app.Stores{
			Users:        store,
			Accounts:     store,
			Transactions: store,
			Tags:         store,
			Reports:      store,
		}
	}

	authMgr := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AdminEmails)
	if ttl := cfg.Auth.TokenTTL(); ttl > 0 {
		authMgr.SetTokenTTL(ttl)
	}

	application, err := app.New(stores, authMgr, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}

	m := metrics.New("fein")
	application.AttachMetrics(m)

	if cfg.Reports.Enabled {
		refresher, err := reports.NewRefresher(application.Reports, cfg.Reports.Schedule, log)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("build report refresher: %w", err)
		}
		if err := application.Attach(refresher); err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("attach report refresher: %w", err)
		}
	}

	audit, err := httpapi.NewAuditLog(200, "", db)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build audit log: %w", err)
	}

	handler := httpapi.NewHandler(application, log, m, audit)
	handler = httpapi.WrapWithAudit(handler, audit)
	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitPerSec > 0 {
		// The limiter sits inside the auth wrap so authenticated requests
		// are keyed on the user id rather than the shared remote address.
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst, log)
		limiter.StartCleanup(5 * time.Minute)
		handler = limiter.Handler(handler)
	}
	handler = middleware.NewAuthMiddleware(authMgr, log, httpapi.PublicPaths).Handler(handler)
	handler = middleware.NewTracingMiddleware(log).Handler(handler)
	handler = middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins).Handler(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     application,
		server:  server,
		db:      db,
		metrics: m,
		limiter: limiter,
	}, nil
}

// App exposes the wired domain services.
func (a *Application) App() *app.Application {
	return a.app
}

// Handler exposes the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

// Run starts the background services and the HTTP server, blocking until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server, the background services, and the database.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := time.Duration(a.cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if a.limiter != nil {
		a.limiter.StopCleanup()
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
