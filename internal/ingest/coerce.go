package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// nullMarkers are cell values treated as null before any parse attempt.
var nullMarkers = map[string]bool{
	"":     true,
	`""`:   true,
	"null": true,
	"NULL": true,
	"N/A":  true,
	"n/a":  true,
	"-":    true,
}

// currencyStripper removes currency symbols and thousands separators
// ahead of strict numeric parsing.
var currencyStripper = strings.NewReplacer("$", "", "£", "", "€", "", ",", "")

// numberRun matches the first decimal number run inside arbitrary text,
// used by lenient coercion to salvage values like "USD 1,234.50 approx".
var numberRun = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// coercePrice parses a price cell. It returns (nil, false) for null
// markers, (nil, true) when the cell had content that would not parse,
// and (&v, false) on success.
func coercePrice(raw string, strict bool) (*float64, bool) {
	s := strings.TrimSpace(raw)
	if nullMarkers[s] {
		return nil, false
	}

	if strict {
		f, err := strconv.ParseFloat(currencyStripper.Replace(s), 64)
		if err != nil {
			return nil, true
		}
		return &f, false
	}

	m := numberRun.FindString(s)
	if m == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil, true
	}
	return &f, false
}

// coerceVolume parses a sales-volume cell. Strict mode accepts only
// integers after comma stripping; lenient mode salvages the first
// number run and rounds it to the nearest integer.
func coerceVolume(raw string, strict bool) (*int64, bool) {
	s := strings.TrimSpace(raw)
	if nullMarkers[s] {
		return nil, false
	}

	if strict {
		n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
		if err != nil {
			return nil, true
		}
		return &n, false
	}

	m := numberRun.FindString(s)
	if m == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil, true
	}
	n := int64(math.Round(f))
	return &n, false
}

// coerceDate parses a release-date cell with the given layout. Failures
// null the value; they never fail the load.
func coerceDate(raw, layout string) (*time.Time, bool) {
	s := strings.TrimSpace(raw)
	if nullMarkers[s] {
		return nil, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, true
	}
	return &t, false
}
