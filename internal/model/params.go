package model

// Range is an inclusive numeric interval. A reversed range (Min > Max)
// contains nothing, so filters built from one return empty results
// rather than errors.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range, inclusive at both ends.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Params holds the filter settings for one query. Price and volume
// ranges only admit records with non-null values; the year range admits
// null release years only when IncludeUnknownYears is set.
type Params struct {
	Year                Range `json:"year"`
	Price               Range `json:"price"`
	Volume              Range `json:"volume"`
	IncludeUnknownYears bool  `json:"include_unknown_years"`
}
