package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Schema names a set of tables and the version its DDL corresponds to.
// Bump Version when the DDL changes.
type Schema struct {
	Name    string
	SQL     string
	Version int
}

// Open connects to the SQLite file at path, creating parent directories and
// applying schema on first use. Statements are traced through otelsql using
// the global tracer provider. An existing database with a different
// recorded version is rejected with ErrSchemaMismatch.
func Open(ctx context.Context, path string, schema Schema) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	raw, err := otelsql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		otelsql.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.schema", schema.Name),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db := sqlx.NewDb(raw, "sqlite")
	if err := initSchema(ctx, db, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initSchema(ctx context.Context, db *sqlx.DB, schema Schema) error {
	if _, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS schema_version (name TEXT PRIMARY KEY, version INTEGER NOT NULL)",
	); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := db.GetContext(ctx, &version, "SELECT version FROM schema_version WHERE name = ?", schema.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return createSchema(ctx, db, schema)
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schema.Version:
		return fmt.Errorf("%w: %s has version %d, expected %d (delete the database to rebuild it)",
			ErrSchemaMismatch, schema.Name, version, schema.Version)
	}
	return nil
}

func createSchema(ctx context.Context, db *sqlx.DB, schema Schema) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema.SQL); err != nil {
		return fmt.Errorf("create %s schema: %w", schema.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (name, version) VALUES (?, ?)", schema.Name, schema.Version,
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLITE_BUSY or a locked-database error.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// RetryOnBusy runs op, retrying with exponential backoff while SQLite reports
// the database as busy.
func RetryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
