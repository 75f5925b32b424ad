// Package config loads, normalizes, and validates boardgamefinder configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY, ANTHROPIC_API_KEY and GOOGLE_VISION_API_KEY. Environment
// variables are consulted here and nowhere else; every other package receives
// an explicit *Config.
package config
