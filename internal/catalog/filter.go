package catalog

import sq "github.com/Masterminds/squirrel"

// FilterOptions restricts the catalog by metadata. Zero disables a bound.
// Entries without the metric always pass.
type FilterOptions struct {
	MinRating float64
	MinWeight float64
	MaxWeight float64
}

// Active reports whether any bound is set.
func (o FilterOptions) Active() bool {
	return o.MinRating > 0 || o.MinWeight > 0 || o.MaxWeight > 0
}

// Allows reports whether e passes every configured bound.
func (o FilterOptions) Allows(e Entry) bool {
	if o.MinRating > 0 && e.AverageRating != nil && *e.AverageRating < o.MinRating {
		return false
	}
	if o.MinWeight > 0 && e.ComplexityWeight != nil && *e.ComplexityWeight < o.MinWeight {
		return false
	}
	if o.MaxWeight > 0 && e.ComplexityWeight != nil && *e.ComplexityWeight > o.MaxWeight {
		return false
	}
	return true
}

// Filter returns the entries that pass o, preserving order.
func Filter(entries []Entry, o FilterOptions) []Entry {
	if !o.Active() {
		return entries
	}
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if o.Allows(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

func (o FilterOptions) conditions() []sq.Sqlizer {
	var conds []sq.Sqlizer
	if o.MinRating > 0 {
		conds = append(conds, sq.Or{sq.Eq{"average_rating": nil}, sq.GtOrEq{"average_rating": o.MinRating}})
	}
	if o.MinWeight > 0 {
		conds = append(conds, sq.Or{sq.Eq{"complexity_weight": nil}, sq.GtOrEq{"complexity_weight": o.MinWeight}})
	}
	if o.MaxWeight > 0 {
		conds = append(conds, sq.Or{sq.Eq{"complexity_weight": nil}, sq.LtOrEq{"complexity_weight": o.MaxWeight}})
	}
	return conds
}
