// Package store persists enriched listings in SQLite.
//
// Each row is keyed by the listing key (a truncated sha256 of the link) and
// carries the full EnrichedListing as a JSON payload next to a few indexed
// summary columns used for filtering. Timestamps are RFC3339Nano text in UTC.
// created_at is written once; every Save refreshes updated_at.
package store
