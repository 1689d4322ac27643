// Package cli holds the start-up sequence shared by the batch binaries:
// logger, configuration, signal-aware context and the store.
package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmourani/hscode-scraper/internal/config"
	"github.com/mmourani/hscode-scraper/internal/database"
	"github.com/mmourani/hscode-scraper/internal/logging"
	"github.com/mmourani/hscode-scraper/internal/repository"
	"github.com/mmourani/hscode-scraper/internal/version"
)

// App is a started binary.
type App struct {
	Name   string
	Logger *slog.Logger
	Config *config.Config
	Ctx    context.Context

	stop context.CancelFunc
	db   *sql.DB
}

// Start sets the default logger, loads configuration and installs a context
// cancelled on SIGINT or SIGTERM. It exits the process when configuration
// cannot be loaded.
func Start(name string) *App {
	logger := logging.SetDefault()

	v := version.Get()
	logger.Debug("starting "+name,
		"version", v.Version,
		"commit", v.Commit,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return &App{Name: name, Logger: logger, Config: cfg, Ctx: ctx, stop: stop}
}

// Store opens the database, runs migrations and returns the repositories.
// It exits the process on failure.
func (a *App) Store() (*repository.Repositories, *sql.DB) {
	db, err := database.Open(a.Ctx, database.Options{
		DSN:            a.Config.DatabaseURL,
		TursoURL:       a.Config.TursoURL,
		TursoAuthToken: a.Config.TursoAuthToken,
	}, a.Logger)
	if err != nil {
		a.Fatal("failed to open database", err)
	}
	a.db = db

	if status, err := database.Status(db); err == nil {
		a.Logger.Debug("database schema ready", "schema_version", status.Version, "migrations_applied", status.Applied)
	}
	return repository.NewRepositories(db), db
}

// Close releases the store and the signal handler.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
	a.stop()
}

// Fatal logs err, releases resources and exits with status 1.
func (a *App) Fatal(msg string, err error) {
	a.Logger.Error(msg, "error", err)
	a.Close()
	os.Exit(1)
}
