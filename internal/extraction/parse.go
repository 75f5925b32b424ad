package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Language values accepted from the oracle.
const (
	LanguageDutch   = "nl"
	LanguageEnglish = "en"
	LanguageUnknown = "unknown"
)

// MaxNames caps how many names one listing can yield.
const MaxNames = 10

var (
	errNoArray  = errors.New("no JSON array in reply")
	errNotArray = errors.New("reply is not a JSON array")
)

// Name is one game mention found in a listing.
type Name struct {
	Name     string `json:"name" yaml:"name"`
	Language string `json:"language" yaml:"language"`
}

// ParseResult is the validated form of an oracle reply. Err is set when the
// reply could not be decoded at all.
type ParseResult struct {
	Names []Name
	Err   error
}

// Valid reports whether the reply decoded into an array.
func (r ParseResult) Valid() bool { return r.Err == nil }

// Parse extracts the JSON array between the first '[' and the last ']' of
// raw and validates each element.
func Parse(raw string) ParseResult {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return ParseResult{Err: errNoArray}
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decoded); err != nil {
		return ParseResult{Err: fmt.Errorf("decode reply: %w", err)}
	}
	items, ok := decoded.([]any)
	if !ok {
		return ParseResult{Err: errNotArray}
	}

	names := make([]Name, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(coerce(firstPresent(obj, "name", "llm_name")))
		if name == "" {
			continue
		}
		names = append(names, Name{
			Name:     name,
			Language: NormalizeLanguage(coerce(firstPresent(obj, "language", "lang", "llm_lang"))),
		})
		if len(names) == MaxNames {
			break
		}
	}
	return ParseResult{Names: names}
}

// NormalizeLanguage lower-cases value and maps anything outside nl/en to unknown.
func NormalizeLanguage(value string) string {
	switch lang := strings.ToLower(strings.TrimSpace(value)); lang {
	case LanguageDutch, LanguageEnglish:
		return lang
	default:
		return LanguageUnknown
	}
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerce(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64, bool:
		return fmt.Sprint(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
