package evaluation

import (
	"fmt"
	"io"
)

// Label grades one evaluated item.
type Label string

const (
	LabelPass      Label = "pass"
	LabelUncertain Label = "uncertain"
	LabelFail      Label = "fail"
)

// Item is one graded comparison.
type Item struct {
	Case     string
	Input    string
	Label    Label
	Expected string
	Actual   string
	Detail   string
}

// Report collects graded items for one evaluation kind.
type Report struct {
	Kind  string
	Items []Item
}

func (r *Report) add(item Item) {
	r.Items = append(r.Items, item)
}

// Total returns the number of graded items.
func (r Report) Total() int { return len(r.Items) }

// Count returns how many items carry label.
func (r Report) Count(label Label) int {
	n := 0
	for _, item := range r.Items {
		if item.Label == label {
			n++
		}
	}
	return n
}

// Percent returns the share of items with label, 0 for an empty report.
func (r Report) Percent(label Label) float64 {
	if len(r.Items) == 0 {
		return 0
	}
	return float64(r.Count(label)) / float64(len(r.Items)) * 100
}

// Labels returns the labels this report kind uses, in display order.
func (r Report) Labels() []Label {
	if r.Kind == KindExtractor {
		return []Label{LabelPass, LabelUncertain, LabelFail}
	}
	return []Label{LabelPass, LabelFail}
}

// WriteSummary prints one line per label with counts and percentages.
func (r Report) WriteSummary(w io.Writer) error {
	for _, label := range r.Labels() {
		if _, err := fmt.Fprintf(w, "%s: %d/%d (%.2f%%)\n", label, r.Count(label), r.Total(), r.Percent(label)); err != nil {
			return err
		}
	}
	return nil
}
