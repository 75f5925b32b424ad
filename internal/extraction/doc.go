// Package extraction turns listing text and OCR output into the board game
// names a seller is offering.
//
// The oracle receives a fixed system prompt and a user message assembled by
// BuildUserMessage. Its reply is parsed by Parse, which tolerates surrounding
// prose, legacy key names and unexpected languages. Extract never returns an
// error: transport failures, timeouts and malformed payloads surface as
// StatusFailed so the pipeline can record the listing and move on.
package extraction
