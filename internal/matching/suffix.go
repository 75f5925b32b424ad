package matching

import (
	"strings"

	"github.com/wouterstultiens/boardgame-finder/internal/textutil"
)

// suffixTokenThreshold is the ratio at which two suffix words count as the
// same word in another language or spelling.
const suffixTokenThreshold = 0.75

// genericSuffixWords name an add-on without identifying it. A candidate
// suffix made only of these never contradicts the query.
var genericSuffixWords = map[string]struct{}{
	"expansion":       {},
	"expansions":      {},
	"expansie":        {},
	"uitbreiding":     {},
	"uitbreidingen":   {},
	"uitbreidingsset": {},
	"aanvulling":      {},
	"aanvullingsset":  {},
	"extension":       {},
	"extensions":      {},
	"erweiterung":     {},
	"edition":         {},
	"editie":          {},
	"pack":            {},
	"set":             {},
}

// SuffixConflict reports whether candidate names a different edition than
// query. Both names must carry a suffix after a colon for a conflict.
func SuffixConflict(query, candidate string) bool {
	querySuffix := strings.Fields(textutil.Normalize(textutil.Suffix(query)))
	candidateSuffix := strings.Fields(textutil.Normalize(textutil.Suffix(candidate)))
	if len(querySuffix) == 0 || len(candidateSuffix) == 0 {
		return false
	}
	if allGeneric(candidateSuffix) {
		return false
	}
	for _, q := range querySuffix {
		for _, c := range candidateSuffix {
			if textutil.Ratio(q, c) >= suffixTokenThreshold {
				return false
			}
		}
	}
	return true
}

func allGeneric(tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := genericSuffixWords[tok]; !ok {
			return false
		}
	}
	return true
}

// baseCandidate returns the plain base game for name among candidates: an
// entry without a colon whose normalized name equals the normalized base.
func baseCandidate(name string, candidates []Candidate) (Candidate, bool) {
	base, _ := textutil.BaseName(name)
	normBase := textutil.Normalize(base)
	if normBase == "" {
		return Candidate{}, false
	}
	for _, c := range candidates {
		if strings.Contains(c.Entry.Name, ":") {
			continue
		}
		if textutil.Normalize(c.Entry.Name) == normBase {
			return c, true
		}
	}
	return Candidate{}, false
}
