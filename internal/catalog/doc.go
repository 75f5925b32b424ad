// Package catalog provides the read-only reference catalog of board games.
//
// Entries come from a CSV export on disk, the same export served over
// HTTP(S) from an object store, a SQLite table filled by `catalog import`, or
// memory. New picks the source from configuration and wraps it in Cached,
// which loads once per process, drops rows with empty names or duplicate ids,
// and applies the rating and weight filters.
package catalog
