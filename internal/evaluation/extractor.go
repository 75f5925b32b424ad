package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wouterstultiens/boardgame-finder/internal/extraction"
	"github.com/wouterstultiens/boardgame-finder/internal/textutil"
)

// KindExtractor names extraction reports.
const KindExtractor = "extractor"

// Extractor is the extraction stage under evaluation.
type Extractor interface {
	Extract(ctx context.Context, title, description string, imageTexts []string) extraction.Result
}

// EvaluateExtractor grades one item per case.
func EvaluateExtractor(ctx context.Context, ex Extractor, cases []Case) Report {
	report := Report{Kind: KindExtractor}
	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		res := ex.Extract(ctx, c.Title, c.Description, c.ImageTexts)
		item := Item{
			Case:     c.Name,
			Input:    c.Title,
			Expected: formatNames(c.ExpectedExtraction),
			Actual:   formatNames(res.Names),
		}
		if res.Status == extraction.StatusFailed {
			item.Label = LabelFail
			if res.Err != nil {
				item.Detail = res.Err.Error()
			}
			report.add(item)
			continue
		}
		item.Label, item.Detail = gradeExtraction(c.ExpectedExtraction, res.Names)
		report.add(item)
	}
	return report
}

func gradeExtraction(expected, actual []extraction.Name) (Label, string) {
	want := languagesByName(expected)
	got := languagesByName(actual)
	if !sameKeys(want, got) {
		return LabelFail, fmt.Sprintf("names differ: expected %v, got %v", sortedKeys(want), sortedKeys(got))
	}
	for name, lang := range want {
		if got[name] != lang {
			return LabelUncertain, fmt.Sprintf("language differs for %q: expected %s, got %s", name, lang, got[name])
		}
	}
	return LabelPass, ""
}

func languagesByName(names []extraction.Name) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[textutil.Normalize(n.Name)] = n.Language
	}
	return out
}

func sameKeys(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatNames(names []extraction.Name) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", n.Name, n.Language))
	}
	return strings.Join(parts, ", ")
}
