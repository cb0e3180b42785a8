// Package query filters, aggregates, and ranks canonical sale records.
// Nothing here mutates its input; every function returns fresh slices
// so callers can hold query results while the underlying dataset is
// swapped out.
package query

import "github.com/popvault/popdash/internal/model"

// Filter returns the records satisfying every range in params, in
// their original order. The price and volume ranges admit only records
// with non-null values; records with a null release year pass the year
// range only when params.IncludeUnknownYears is set.
func Filter(records []model.Record, params model.Params) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if matches(r, params) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Record, p model.Params) bool {
	if r.Price == nil || !p.Price.Contains(*r.Price) {
		return false
	}
	if r.Volume == nil || !p.Volume.Contains(float64(*r.Volume)) {
		return false
	}
	if r.ReleaseYear == nil {
		return p.IncludeUnknownYears
	}
	return p.Year.Contains(float64(*r.ReleaseYear))
}
