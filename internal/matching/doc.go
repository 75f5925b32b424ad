// Package matching resolves extracted game names to catalog entries.
//
// Index precomputes normalized catalog names and ranks entries with the
// Ratcliff/Obershelp similarity ratio. Two Resolver strategies sit on top of it:
// DirectResolver takes the best fuzzy hit above a cutoff, and OracleResolver
// shortlists candidates (including hits for the base name before a colon)
// and asks the text-generation oracle to pick one. The oracle's choice is
// checked against the query's edition suffix so "Monopoly: Arnhem" never
// resolves to "Monopoly: Batman".
package matching
