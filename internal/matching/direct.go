package matching

import "context"

// DefaultFuzzyCutoff is the similarity floor for DirectResolver.
const DefaultFuzzyCutoff = 0.7

// DirectResolver picks the single best fuzzy hit. It never calls the oracle.
type DirectResolver struct {
	index  *Index
	cutoff float64
}

// NewDirectResolver returns a resolver over idx. A cutoff outside (0, 1]
// falls back to DefaultFuzzyCutoff.
func NewDirectResolver(idx *Index, cutoff float64) *DirectResolver {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultFuzzyCutoff
	}
	return &DirectResolver{index: idx, cutoff: cutoff}
}

// Method implements the method label lookup.
func (r *DirectResolver) Method() string { return MethodFuzzy }

// Candidates returns the best hit above the cutoff, if any.
func (r *DirectResolver) Candidates(name string) []Candidate {
	return r.index.Search(name, 1, r.cutoff)
}

// Resolve returns the first candidate.
func (r *DirectResolver) Resolve(_ context.Context, _ Query, candidates []Candidate) (Match, error) {
	if len(candidates) == 0 {
		return Match{Decision: DecisionBelowCutoff}, nil
	}
	return matchFor(candidates[0], DecisionFuzzyMatch), nil
}
