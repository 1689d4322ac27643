// Package migrations evolves the HS code store schema.
//
// Each file named YYYYMMDD-HHmmss-description.go registers one Migration from
// init(). Versions are applied in timestamp order, each in its own transaction,
// and recorded in schema_migrations so a store file or Turso replica never
// sees the same version twice.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Migration is one schema version.
type Migration struct {
	Timestamp   string   // version, YYYYMMDD-HHmmss
	Description string   // logged when applied
	Up          []string // statements, run in order
}

var registry []Migration

// Register adds a migration. Called from init() in the migration files.
func Register(m Migration) {
	registry = append(registry, m)
}

// Registered returns the number of migrations compiled into the binary.
func Registered() int {
	return len(registry)
}

func ordered() []Migration {
	out := append([]Migration(nil), registry...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Run brings the schema up to date.
func Run(db *sql.DB, logger *slog.Logger) error {
	return RunContext(context.Background(), db, logger)
}

// RunContext brings the schema up to date, stopping between versions when ctx
// is cancelled.
func RunContext(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	pending, err := Pending(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		started := time.Now()
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("schema version %s (%s): %w", m.Timestamp, m.Description, err)
		}
		logger.Info("schema upgraded",
			"version", m.Timestamp,
			"description", m.Description,
			"duration", time.Since(started),
		)
	}
	return nil
}

// Applied returns the applied versions, oldest first.
func Applied(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Pending returns the registered migrations not yet applied, oldest first.
func Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	versions, err := Applied(ctx, db)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}

	var pending []Migration
	for _, m := range ordered() {
		if !done[m.Timestamp] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil && !alreadyApplied(err, stmt) {
			return fmt.Errorf("%w\n%s", err, stmt)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Timestamp, m.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}
	return tx.Commit()
}

// alreadyApplied reports errors from schema changes a store already carries.
// SQLite has no ADD COLUMN IF NOT EXISTS, and stores built by the older
// importer scripts may have indexes created by hand.
func alreadyApplied(err error, stmt string) bool {
	msg := err.Error()
	upper := strings.ToUpper(stmt)
	switch {
	case strings.Contains(msg, "duplicate column") && strings.Contains(upper, "ADD COLUMN"):
		return true
	case strings.Contains(msg, "already exists") &&
		(strings.Contains(upper, "CREATE INDEX") || strings.Contains(upper, "CREATE UNIQUE INDEX")):
		return true
	}
	return false
}
