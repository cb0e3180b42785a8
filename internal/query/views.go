package query

import (
	"sort"

	"github.com/popvault/popdash/internal/model"
)

// CategoryCount is one category's record tally.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryCounts tallies records per category, sorted by descending
// count with ties broken by category name. An empty input yields an
// empty slice.
func CategoryCounts(records []model.Record) []CategoryCount {
	tally := make(map[string]int)
	for _, r := range records {
		tally[r.Category]++
	}

	out := make([]CategoryCount, 0, len(tally))
	for category, n := range tally {
		out = append(out, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopBy returns the n highest-valued records by the metric. Ties keep
// input order. Records whose metric value is null never appear, so the
// result is shorter than n whenever fewer non-null values exist.
func TopBy(records []model.Record, metric model.Metric, n int) []model.Record {
	if n <= 0 {
		return nil
	}

	type keyed struct {
		rec model.Record
		val float64
	}
	ranked := make([]keyed, 0, len(records))
	for _, r := range records {
		if v := r.Value(metric); v != nil {
			ranked = append(ranked, keyed{rec: r, val: *v})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].val > ranked[j].val
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]model.Record, len(ranked))
	for i, k := range ranked {
		out[i] = k.rec
	}
	return out
}
