// Package main hosts the boardgamefinder CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the catalog, the
// oracle and the listing store into the enrichment pipeline. Single
// listings and single names can be tried with enrich and match; run drives a
// whole listing file through the pipeline under a lock file, optionally
// exposing Prometheus metrics and exporting traces.
//
// Keep this package thin: behavior lives in the internal packages and is
// surfaced here through flags and output formatting.
package main
