package matching

import (
	"sort"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/textutil"
)

// DefaultCandidateCutoff is the similarity floor used by FindCandidates.
const DefaultCandidateCutoff = 0.6

// Candidate is a catalog entry scored against a query.
type Candidate struct {
	Entry catalog.Entry
	Score float64
}

type indexedEntry struct {
	entry catalog.Entry
	norm  string
}

// Index holds the normalized catalog in catalog order. It is read-only after
// construction and safe for concurrent use.
type Index struct {
	entries []indexedEntry
	cutoff  float64
}

// IndexOption customizes an Index.
type IndexOption func(*Index)

// WithCandidateCutoff sets the cutoff FindCandidates searches with.
func WithCandidateCutoff(cutoff float64) IndexOption {
	return func(idx *Index) {
		idx.cutoff = cutoff
	}
}

// NewIndex normalizes every entry name once. Entries whose name normalizes to
// "" can never match and are left out.
func NewIndex(entries []catalog.Entry, opts ...IndexOption) *Index {
	idx := &Index{
		entries: make([]indexedEntry, 0, len(entries)),
		cutoff:  DefaultCandidateCutoff,
	}
	for _, opt := range opts {
		opt(idx)
	}
	for _, e := range entries {
		norm := textutil.Normalize(e.Name)
		if norm == "" {
			continue
		}
		idx.entries = append(idx.entries, indexedEntry{entry: e, norm: norm})
	}
	return idx
}

// Len returns the number of searchable entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Cutoff returns the cutoff used by FindCandidates.
func (idx *Index) Cutoff() float64 { return idx.cutoff }

// Search returns up to limit entries whose similarity to query is at least
// cutoff, best first. Equal scores keep catalog order.
func (idx *Index) Search(query string, limit int, cutoff float64) []Candidate {
	norm := textutil.Normalize(query)
	if norm == "" || limit <= 0 {
		return nil
	}

	m := textutil.NewSequenceMatcher("", norm)
	var hits []Candidate
	for _, ie := range idx.entries {
		m.SetSeq1(ie.norm)
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		hits = append(hits, Candidate{Entry: ie.entry, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// FindCandidates searches the full name and, for names with a colon, the base
// name as well. Full-name hits come first; duplicates are dropped by id.
func (idx *Index) FindCandidates(name string, limit int) []Candidate {
	out := idx.Search(name, limit, idx.cutoff)
	base, ok := textutil.BaseName(name)
	if !ok {
		return out
	}

	seen := make(map[int]struct{}, len(out))
	for _, c := range out {
		seen[c.Entry.ID] = struct{}{}
	}
	for _, c := range idx.Search(base, limit, idx.cutoff) {
		if _, dup := seen[c.Entry.ID]; dup {
			continue
		}
		seen[c.Entry.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
