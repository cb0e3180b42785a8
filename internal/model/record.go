// Package model holds the canonical sale-record types shared by the
// ingest, query, and serving layers.
package model

import "time"

// Record is one canonical sale record after header mapping, coercion,
// and derived-field computation. Missing values are nil pointers; there
// are no sentinel zero values.
type Record struct {
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Price       *float64   `json:"price,omitempty"`
	Volume      *int64     `json:"volume,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	ReleaseYear *int       `json:"release_year,omitempty"`
	MarketCap   *float64   `json:"market_cap,omitempty"`
}

// Value returns the record's value for the given metric, or nil when
// the underlying field is null. Volume is widened to float64 so all
// metrics rank through the same comparison.
func (r Record) Value(m Metric) *float64 {
	switch m {
	case MetricPrice:
		return r.Price
	case MetricVolume:
		if r.Volume == nil {
			return nil
		}
		v := float64(*r.Volume)
		return &v
	case MetricMarketCap:
		return r.MarketCap
	}
	return nil
}
