// Package pipeline enriches marketplace listings with catalog matches.
//
// Enricher handles one listing: it fills missing OCR texts, extracts the
// game names once, then resolves the names concurrently and reassembles the
// results in extraction order. Failures stay local: a failed extraction marks
// the listing OutcomeFailed, a failed resolution marks only that name
// StatusFailed.
//
// Runner drives a batch. Listings already stored with at least one game are
// skipped; the rest are enriched by a bounded worker pool and saved. Every
// run gets a uuid that is attached to logs and spans.
package pipeline
