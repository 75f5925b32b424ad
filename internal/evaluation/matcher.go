package evaluation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wouterstultiens/boardgame-finder/internal/matching"
)

// KindMatcher names matcher reports.
const KindMatcher = "matcher"

// EvaluateMatcher resolves each expected extraction name and grades the
// chosen id. A case whose expectation lists do not line up fails once per
// item of the longer list.
func EvaluateMatcher(ctx context.Context, resolver matching.Resolver, cases []Case) Report {
	report := Report{Kind: KindMatcher}
	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		names := c.ExpectedExtraction
		if len(names) != len(c.ExpectedMatches) {
			n := max(len(names), len(c.ExpectedMatches))
			for i := 0; i < n; i++ {
				report.add(Item{
					Case:   c.Name,
					Label:  LabelFail,
					Detail: fmt.Sprintf("%d names but %d expected matches", len(names), len(c.ExpectedMatches)),
				})
			}
			continue
		}
		if len(names) == 0 {
			report.add(Item{Case: c.Name, Label: LabelPass, Detail: "no names to match"})
			continue
		}
		for i, name := range names {
			expected := c.ExpectedMatches[i]
			item := Item{
				Case:     c.Name,
				Input:    name.Name,
				Expected: formatIDs(expected.IDs),
			}
			m, err := resolver.Resolve(ctx, matching.Query{Name: name.Name, Language: name.Language}, resolver.Candidates(name.Name))
			if err != nil {
				item.Label = LabelFail
				item.Actual = "None"
				item.Detail = err.Error()
				report.add(item)
				continue
			}
			id := 0
			item.Actual = "None"
			if m.Matched() {
				id = m.Entry.ID
				item.Actual = fmt.Sprintf("%d %s", m.Entry.ID, m.Entry.Name)
			}
			item.Label = LabelFail
			if expected.Accepts(id) {
				item.Label = LabelPass
			}
			item.Detail = m.Decision
			report.add(item)
		}
	}
	return report
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "None"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " | ")
}
