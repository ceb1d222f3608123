// Package migrate applies the embedded SQL schema migrations.
// It runs over database/sql with the lib/pq driver so it can be used from
// tooling and tests without a pgx pool.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/lib/pq"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"

	createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
)

// ErrNoMigrations is returned when the source holds no *.up.sql files.
var ErrNoMigrations = errors.New("no migrations found")

// Migrator applies numbered migrations tracked in schema_migrations.
type Migrator struct {
	db     *sql.DB
	source fs.FS
	logger *slog.Logger
}

// Open opens a database/sql handle for the given PostgreSQL URL.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// New creates a Migrator reading SQL files from source.
func New(db *sql.DB, source fs.FS, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{
		db:     db,
		source: source,
		logger: logger.With("component", "migrate"),
	}
}

// Up applies every pending migration in version order.
// Returns the number of migrations applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	versions, err := m.versions(upSuffix)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, ErrNoMigrations
	}

	if _, err := m.db.ExecContext(ctx, createVersionTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %s", describe(err))
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, version := range versions {
		if applied[version] {
			continue
		}
		if err := m.apply(ctx, version, version+upSuffix, `INSERT INTO schema_migrations (version) VALUES ($1)`); err != nil {
			return count, err
		}
		m.logger.Info("migration applied", "version", version)
		count++
	}

	return count, nil
}

// Down reverts every applied migration in reverse version order.
func (m *Migrator) Down(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %s", describe(err))
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	versions, err := m.versions(downSuffix)
	if err != nil {
		return err
	}

	for i := len(versions) - 1; i >= 0; i-- {
		version := versions[i]
		if !applied[version] {
			continue
		}
		if err := m.apply(ctx, version, version+downSuffix, `DELETE FROM schema_migrations WHERE version = $1`); err != nil {
			return err
		}
		m.logger.Info("migration reverted", "version", version)
	}

	return nil
}

// apply runs one migration file and records it in a single transaction.
func (m *Migrator) apply(ctx context.Context, version, file, record string) error {
	body, err := fs.ReadFile(m.source, file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("migration %s failed: %s", file, describe(err))
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		return fmt.Errorf("failed to record migration %s: %s", version, describe(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", version, err)
	}
	return nil
}

// applied returns the set of recorded versions.
func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %s", describe(err))
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// versions lists migration versions that have a file with the given suffix.
func (m *Migrator) versions(suffix string) ([]string, error) {
	matches, err := fs.Glob(m.source, "*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	versions := make([]string, 0, len(matches))
	for _, name := range matches {
		versions = append(versions, strings.TrimSuffix(name, suffix))
	}
	sort.Strings(versions)

	return versions, nil
}

// describe adds the PostgreSQL error code and detail when available.
func describe(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		msg := fmt.Sprintf("%s (SQLSTATE %s)", pqErr.Message, pqErr.Code)
		if pqErr.Detail != "" {
			msg += ": " + pqErr.Detail
		}
		return msg
	}
	return err.Error()
}
