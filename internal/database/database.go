// Package database handles the HS code store connection and migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tursodatabase/go-libsql"

	"github.com/mmourani/hscode-scraper/internal/database/migrations"
)

// Options configures how the store is opened.
type Options struct {
	// DSN is a libsql DSN: "file:hscode.db", ":memory:" or a libsql server URL.
	DSN string

	// TursoURL and TursoAuthToken switch to embedded replica mode, where the
	// local file named by DSN is synced with a remote Turso database.
	TursoURL       string
	TursoAuthToken string
}

// New opens the store using libsql.
// Supports:
//   - Local files: DSN "file:path/to/hscode.db"
//   - Embedded replica: TursoURL + TursoAuthToken set, DSN names the local replica file
//   - Local libsql server: run `turso dev` and use DSN "http://127.0.0.1:8080"
//
// The pool is limited to one connection; the batch tools are single-writer and
// an in-memory DSN is only shared within a single connection.
func New(opts Options) (*sql.DB, error) {
	var db *sql.DB

	if opts.TursoURL != "" && opts.TursoAuthToken != "" {
		dbPath := strings.TrimPrefix(opts.DSN, "file:")
		dbPath = strings.Split(dbPath, "?")[0]

		connector, err := libsql.NewEmbeddedReplicaConnector(dbPath, opts.TursoURL,
			libsql.WithAuthToken(opts.TursoAuthToken),
			libsql.WithReadYourWrites(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Turso connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		var err error
		db, err = sql.Open("libsql", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Open opens the store and brings its schema up to date.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*sql.DB, error) {
	db, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunContext(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// SchemaStatus describes the applied schema.
type SchemaStatus struct {
	Version    string `json:"version"`
	Applied    int    `json:"applied"`
	Registered int    `json:"registered"`
}

// Status reports the latest applied migration and how many are applied.
func Status(db *sql.DB) (SchemaStatus, error) {
	versions, err := migrations.Applied(context.Background(), db)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	status := SchemaStatus{Applied: len(versions), Registered: migrations.Registered()}
	if len(versions) > 0 {
		status.Version = versions[len(versions)-1]
	}
	return status, nil
}
