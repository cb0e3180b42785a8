package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoercePriceStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  float64
		null  bool
		bad   bool
	}{
		{"plain", "24.99", 24.99, false, false},
		{"dollar sign", "$24.99", 24.99, false, false},
		{"pound with thousands", "£1,299.00", 1299, false, false},
		{"euro", "€15", 15, false, false},
		{"thousands only", "1,234.56", 1234.56, false, false},
		{"padded", "  $12  ", 12, false, false},
		{"negative", "-3.50", -3.5, false, false},
		{"empty", "", 0, true, false},
		{"quoted empty", `""`, 0, true, false},
		{"na marker", "N/A", 0, true, false},
		{"lower na marker", "n/a", 0, true, false},
		{"null marker", "null", 0, true, false},
		{"dash marker", "-", 0, true, false},
		{"residue", "ca. 25 USD", 0, true, true},
		{"double dot", "12.5.3", 0, true, true},
		{"words", "unknown", 0, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, bad := coercePrice(tt.input, true)
			assert.Equal(t, tt.bad, bad)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.0001)
		})
	}
}

func TestCoercePriceLenient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  float64
		null  bool
		bad   bool
	}{
		{"embedded", "USD 1,234.50 approx", 1234.5, false, false},
		{"prefix junk", "~15", 15, false, false},
		{"suffix junk", "25 (avg)", 25, false, false},
		{"plain still works", "$9.99", 9.99, false, false},
		{"no digits", "to be announced", 0, true, true},
		{"empty", "", 0, true, false},
		{"na marker", "N/A", 0, true, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, bad := coercePrice(tt.input, false)
			assert.Equal(t, tt.bad, bad)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.0001)
		})
	}
}

func TestCoerceVolumeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int64
		null  bool
		bad   bool
	}{
		{"plain", "40", 40, false, false},
		{"thousands", "1,200", 1200, false, false},
		{"negative", "-5", -5, false, false},
		{"zero", "0", 0, false, false},
		{"decimal rejected", "40.0", 0, true, true},
		{"words rejected", "forty", 0, true, true},
		{"empty", "", 0, true, false},
		{"na marker", "N/A", 0, true, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, bad := coerceVolume(tt.input, true)
			assert.Equal(t, tt.bad, bad)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestCoerceVolumeLenient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int64
		null  bool
		bad   bool
	}{
		{"embedded", "40 units", 40, false, false},
		{"rounds up", "39.6", 40, false, false},
		{"rounds down", "39.4", 39, false, false},
		{"thousands", "1,200", 1200, false, false},
		{"no digits", "none", 0, true, true},
		{"empty", "", 0, true, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, bad := coerceVolume(tt.input, false)
			assert.Equal(t, tt.bad, bad)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestCoerceDate(t *testing.T) {
	t.Parallel()

	got, bad := coerceDate("2020-05-01", "2006-01-02")
	require.NotNil(t, got)
	assert.False(t, bad)
	assert.Equal(t, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), *got)

	got, bad = coerceDate("2020-13-40", "2006-01-02")
	assert.Nil(t, got)
	assert.True(t, bad)

	got, bad = coerceDate("05/01/2020", "2006-01-02")
	assert.Nil(t, got)
	assert.True(t, bad)

	got, bad = coerceDate("05/01/2020", "01/02/2006")
	require.NotNil(t, got)
	assert.False(t, bad)
	assert.Equal(t, 2020, got.Year())

	got, bad = coerceDate("", "2006-01-02")
	assert.Nil(t, got)
	assert.False(t, bad)

	got, bad = coerceDate("N/A", "2006-01-02")
	assert.Nil(t, got)
	assert.False(t, bad)
}
