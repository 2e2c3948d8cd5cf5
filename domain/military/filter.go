package military

import (
	"sentinel/internal/errors"
)

// ClampRange intersects [minRank, maxRank] with [1, t.MaxRank()]. The result
// may be an empty window (lo > hi) when the request lies outside the table.
func ClampRange(t *Table, minRank, maxRank int) (lo, hi int) {
	lo, hi = minRank, maxRank
	if lo < 1 {
		lo = 1
	}
	if hi > t.MaxRank() {
		hi = t.MaxRank()
	}
	return lo, hi
}

// Filter returns the rows with minRank <= Rank <= maxRank, further restricted
// to countries when countries is non-empty. Row order is preserved and t is
// never modified. Bounds outside [1, MaxRank] are clamped; minRank > maxRank
// fails with INVALID_RANGE. No match yields an empty table.
func Filter(t *Table, countries []string, minRank, maxRank int) (*Table, error) {
	if t == nil {
		return nil, errors.InvalidInput("filter requires a loaded table")
	}
	if minRank > maxRank {
		return nil, errors.InvalidRange(minRank, maxRank)
	}

	lo, hi := ClampRange(t, minRank, maxRank)

	var allowed map[string]struct{}
	if len(countries) > 0 {
		allowed = make(map[string]struct{}, len(countries))
		for _, c := range countries {
			allowed[c] = struct{}{}
		}
	}

	rows := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if r.Rank < lo || r.Rank > hi {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[r.Country]; !ok {
				continue
			}
		}
		rows = append(rows, r)
	}

	return t.derive(rows), nil
}
