package catalog

import (
	"context"
	_ "embed"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/wouterstultiens/boardgame-finder/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

const (
	schemaVersion   = 1
	entryTable      = "catalog_entries"
	insertBatchSize = 500
)

var entryColumns = []string{"id", "name", "year_published", "complexity_weight", "average_rating", "image_path"}

// SQLiteRepository serves the catalog from a table populated by Replace.
type SQLiteRepository struct {
	db     *sqlx.DB
	filter FilterOptions
}

// OpenSQLite opens (or creates) the catalog database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sqlitedb.Open(ctx, path, sqlitedb.Schema{Name: "catalog", SQL: schemaSQL, Version: schemaVersion})
	if err != nil {
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

// WithFilter pushes the metric filters into the SELECT.
func (s *SQLiteRepository) WithFilter(opts FilterOptions) *SQLiteRepository {
	s.filter = opts
	return s
}

// Close releases the database handle.
func (s *SQLiteRepository) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Entries returns every stored entry in import order.
func (s *SQLiteRepository) Entries(ctx context.Context) ([]Entry, error) {
	query := sq.Select(entryColumns...).From(entryTable).OrderBy("position")
	for _, cond := range s.filter.conditions() {
		query = query.Where(cond)
	}
	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}
	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, sqlText, args...); err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (s *SQLiteRepository) Count(ctx context.Context) (int, error) {
	sqlText, args, err := sq.Select("COUNT(1)").From(entryTable).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.GetContext(ctx, &count, sqlText, args...); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return count, nil
}

// Replace swaps the stored catalog for entries in one transaction. Duplicate
// ids keep their first occurrence.
func (s *SQLiteRepository) Replace(ctx context.Context, entries []Entry) (int, error) {
	var inserted int
	err := sqlitedb.RetryOnBusy(ctx, func() error {
		inserted = 0
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin catalog replace: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM "+entryTable); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
		for start := 0; start < len(entries); start += insertBatchSize {
			end := min(start+insertBatchSize, len(entries))
			insert := sq.Insert(entryTable).Options("OR IGNORE").
				Columns("id", "position", "name", "year_published", "complexity_weight", "average_rating", "image_path")
			for i, e := range entries[start:end] {
				insert = insert.Values(e.ID, start+i, e.Name, e.YearPublished, e.ComplexityWeight, e.AverageRating, e.ImagePath)
			}
			sqlText, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("build catalog insert: %w", err)
			}
			res, err := tx.ExecContext(ctx, sqlText, args...)
			if err != nil {
				return fmt.Errorf("insert catalog batch: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
