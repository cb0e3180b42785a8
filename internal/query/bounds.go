package query

import (
	"math"

	"github.com/popvault/popdash/internal/model"
)

// DatasetBounds holds the observed min and max of each filterable
// field. A nil range means the dataset had no non-null values to
// derive bounds from.
type DatasetBounds struct {
	Year   *model.Range `json:"year,omitempty"`
	Price  *model.Range `json:"price,omitempty"`
	Volume *model.Range `json:"volume,omitempty"`
}

// Bounds scans the records once and returns the min/max of release
// year, price, and volume. Surfaces seed their default filter ranges
// from these.
func Bounds(records []model.Record) DatasetBounds {
	var b DatasetBounds
	for _, r := range records {
		if r.Price != nil {
			b.Price = widen(b.Price, *r.Price)
		}
		if r.Volume != nil {
			b.Volume = widen(b.Volume, float64(*r.Volume))
		}
		if r.ReleaseYear != nil {
			b.Year = widen(b.Year, float64(*r.ReleaseYear))
		}
	}
	return b
}

func widen(r *model.Range, v float64) *model.Range {
	if r == nil {
		return &model.Range{Min: v, Max: v}
	}
	r.Min = min(r.Min, v)
	r.Max = max(r.Max, v)
	return r
}

// ParamsFromBounds seeds query params from dataset bounds. Fields with
// no derivable bounds get an unbounded range; an underivable year range
// also turns IncludeUnknownYears on, since otherwise no record could
// pass the year filter at all.
func ParamsFromBounds(b DatasetBounds) model.Params {
	p := model.Params{
		Year:   openRange(b.Year),
		Price:  openRange(b.Price),
		Volume: openRange(b.Volume),
	}
	if b.Year == nil {
		p.IncludeUnknownYears = true
	}
	return p
}

func openRange(r *model.Range) model.Range {
	if r == nil {
		return model.Range{Min: -math.MaxFloat64, Max: math.MaxFloat64}
	}
	return *r
}
