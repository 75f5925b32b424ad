package testsupport

import (
	"regexp"
	"strings"

	"github.com/wouterstultiens/boardgame-finder/internal/matching"
	"github.com/wouterstultiens/boardgame-finder/internal/textutil"
)

var (
	queryLinePattern     = regexp.MustCompile(`(?m)^Original game name: "(.*)"$`)
	candidateLinePattern = regexp.MustCompile(`(?m)^- ID: (\d+), Name: (.*)$`)
)

type promptCandidate struct {
	id   string
	name string
}

// Librarian answers a matching prompt the way a rule-following oracle
// would: exact name first, then a candidate with the same base and a
// compatible edition, then the plain base game, otherwise "None".
func Librarian(userPrompt string) string {
	m := queryLinePattern.FindStringSubmatch(userPrompt)
	if m == nil {
		return "None"
	}
	query := m[1]
	var candidates []promptCandidate
	for _, line := range candidateLinePattern.FindAllStringSubmatch(userPrompt, -1) {
		candidates = append(candidates, promptCandidate{id: line[1], name: line[2]})
	}

	normQuery := textutil.Normalize(query)
	for _, c := range candidates {
		if textutil.Normalize(c.name) == normQuery {
			return c.id
		}
	}

	base, hasSuffix := textutil.BaseName(query)
	normBase := textutil.Normalize(base)
	if hasSuffix {
		for _, c := range candidates {
			candBase, ok := textutil.BaseName(c.name)
			if !ok || textutil.Normalize(candBase) != normBase {
				continue
			}
			if !matching.SuffixConflict(query, c.name) {
				return c.id
			}
		}
	}
	for _, c := range candidates {
		if !strings.Contains(c.name, ":") && textutil.Normalize(c.name) == normBase {
			return c.id
		}
	}
	return "None"
}

// RoutedOracle answers matching prompts with Librarian and every other
// prompt with extractionReply.
func RoutedOracle(extractionReply string) *ScriptedOracle {
	return NewScriptedOracle(func(systemPrompt, userPrompt string) (string, error) {
		if systemPrompt == matching.SystemPrompt {
			return Librarian(userPrompt), nil
		}
		return extractionReply, nil
	})
}
