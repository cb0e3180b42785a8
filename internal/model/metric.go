package model

import "github.com/rotisserie/eris"

// Metric identifies a rankable numeric field on a Record.
type Metric string

const (
	MetricPrice     Metric = "price"
	MetricVolume    Metric = "volume"
	MetricMarketCap Metric = "market_cap"
)

// Metrics returns all rankable metrics in display order.
func Metrics() []Metric {
	return []Metric{MetricMarketCap, MetricVolume, MetricPrice}
}

// ParseMetric converts a user-supplied name into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricPrice, MetricVolume, MetricMarketCap:
		return Metric(s), nil
	}
	return "", eris.Errorf("model: unknown metric %q (want price, volume, or market_cap)", s)
}

// Label returns the human-readable name used in table headings.
func (m Metric) Label() string {
	switch m {
	case MetricPrice:
		return "Avg. Sell Price"
	case MetricVolume:
		return "Sales Volume"
	case MetricMarketCap:
		return "Market Capitalization"
	}
	return string(m)
}
