package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
	"github.com/wouterstultiens/boardgame-finder/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

const (
	schemaVersion = 1
	listingTable  = "listings"

	// Fixed-width fractions keep the text columns sortable.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var listingColumns = []string{
	"key", "link", "title", "outcome", "games_count", "matched_count",
	"run_id", "payload", "enriched_at", "created_at", "updated_at",
}

// Store persists enriched listings.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Matched *bool
	Outcome pipeline.Outcome
	Limit   int
}

type row struct {
	Key          string         `db:"key"`
	Link         string         `db:"link"`
	Title        string         `db:"title"`
	Outcome      string         `db:"outcome"`
	GamesCount   int            `db:"games_count"`
	MatchedCount int            `db:"matched_count"`
	RunID        sql.NullString `db:"run_id"`
	Payload      string         `db:"payload"`
	EnrichedAt   string         `db:"enriched_at"`
	CreatedAt    string         `db:"created_at"`
	UpdatedAt    string         `db:"updated_at"`
}

// Open opens (or creates) the listing database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlitedb.Open(ctx, path, sqlitedb.Schema{Name: "listings", SQL: schemaSQL, Version: schemaVersion})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "open listing store", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or replaces item. created_at survives replacement.
func (s *Store) Save(ctx context.Context, item pipeline.EnrichedListing) error {
	if item.Listing.Link == "" {
		return services.Wrap(services.ErrValidation, "store", "save", "listing has no link", nil)
	}
	now := s.now().UTC()
	nowText := now.Format(timeLayout)

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode listing payload: %w", err)
	}
	enriched := item.EnrichedAt
	if enriched.IsZero() {
		enriched = now
	}

	sqlText, args, err := sq.Insert(listingTable).
		Columns(listingColumns...).
		Values(
			item.Key(),
			item.Listing.Link,
			item.Listing.Title,
			string(item.Outcome),
			len(item.Games),
			item.MatchedCount(),
			nullableString(item.RunID),
			string(payload),
			enriched.UTC().Format(timeLayout),
			nowText,
			nowText,
		).
		Suffix(`ON CONFLICT(key) DO UPDATE SET
			link = excluded.link,
			title = excluded.title,
			outcome = excluded.outcome,
			games_count = excluded.games_count,
			matched_count = excluded.matched_count,
			run_id = excluded.run_id,
			payload = excluded.payload,
			enriched_at = excluded.enriched_at,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build listing upsert: %w", err)
	}
	return sqlitedb.RetryOnBusy(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
			return fmt.Errorf("save listing %s: %w", item.Key(), err)
		}
		return nil
	})
}

// FindByLink returns the stored listing for link. The bool is false when no
// row exists.
func (s *Store) FindByLink(ctx context.Context, link string) (pipeline.EnrichedListing, bool, error) {
	return s.Get(ctx, listing.Key(link))
}

// Get returns the stored listing with key.
func (s *Store) Get(ctx context.Context, key string) (pipeline.EnrichedListing, bool, error) {
	sqlText, args, err := sq.Select(listingColumns...).From(listingTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return pipeline.EnrichedListing{}, false, fmt.Errorf("build listing query: %w", err)
	}
	var r row
	if err := s.db.GetContext(ctx, &r, sqlText, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pipeline.EnrichedListing{}, false, nil
		}
		return pipeline.EnrichedListing{}, false, fmt.Errorf("get listing %s: %w", key, err)
	}
	item, err := r.decode()
	if err != nil {
		return pipeline.EnrichedListing{}, false, err
	}
	return item, true, nil
}

// List returns stored listings, most recently updated first.
func (s *Store) List(ctx context.Context, filter Filter) ([]pipeline.EnrichedListing, error) {
	query := sq.Select(listingColumns...).From(listingTable).OrderBy("updated_at DESC", "key")
	if filter.Matched != nil {
		if *filter.Matched {
			query = query.Where(sq.Gt{"matched_count": 0})
		} else {
			query = query.Where(sq.Eq{"matched_count": 0})
		}
	}
	if filter.Outcome != "" {
		query = query.Where(sq.Eq{"outcome": string(filter.Outcome)})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build listing list query: %w", err)
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, sqlText, args...); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	items := make([]pipeline.EnrichedListing, 0, len(rows))
	for _, r := range rows {
		item, err := r.decode()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Count returns the number of stored listings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(1) FROM "+listingTable); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

func (r row) decode() (pipeline.EnrichedListing, error) {
	var item pipeline.EnrichedListing
	if err := json.Unmarshal([]byte(r.Payload), &item); err != nil {
		return pipeline.EnrichedListing{}, fmt.Errorf("decode listing %s: %w", r.Key, err)
	}
	if item.Games == nil {
		item.Games = []pipeline.GameMatch{}
	}
	item.Outcome = pipeline.Outcome(r.Outcome)
	if r.RunID.Valid {
		item.RunID = r.RunID.String
	}
	item.EnrichedAt = parseTimeString(r.EnrichedAt)
	item.CreatedAt = parseTimeString(r.CreatedAt)
	item.UpdatedAt = parseTimeString(r.UpdatedAt)
	return item, nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return ts
	}
	return time.Time{}
}

var _ pipeline.Store = (*Store)(nil)
