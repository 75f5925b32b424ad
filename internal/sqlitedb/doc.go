// Package sqlitedb opens the SQLite files used for the listing store and the
// imported catalog. It applies WAL and busy-timeout pragmas, creates versioned
// schemas and retries writes that hit SQLITE_BUSY.
package sqlitedb
