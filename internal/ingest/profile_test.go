package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultProfile(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	assert.Equal(t, FieldCategory, p.Columns["console-name"])
	assert.Equal(t, FieldName, p.Columns["product-name"])
	assert.Equal(t, FieldPrice, p.Columns["new-price"])
	assert.Equal(t, FieldVolume, p.Columns["sales-volume"])
	assert.Equal(t, FieldReleaseDate, p.Columns["release-date"])
	assert.Equal(t, []string{FieldPrice}, p.Required)
	assert.Equal(t, "2006-01-02", p.DateFormat)
	assert.True(t, p.Strict)
	require.NotNil(t, p.LowVolumeThreshold)
	assert.Equal(t, int64(1), *p.LowVolumeThreshold)
}

func TestLoadProfileReplacesColumns(t *testing.T) {
	path := writeProfile(t, `
columns:
  Produkt: name
  Kategorie: category
  Preis: price
required: [price, name]
strict_numeric_coercion: false
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)

	// Given columns replace the default map entirely.
	assert.Len(t, p.Columns, 3)
	assert.Equal(t, FieldName, p.Columns["Produkt"])
	_, hasDefault := p.Columns["console-name"]
	assert.False(t, hasDefault)

	assert.Equal(t, []string{FieldPrice, FieldName}, p.Required)
	assert.False(t, p.Strict)

	// Untouched keys keep defaults.
	assert.Equal(t, "2006-01-02", p.DateFormat)
	require.NotNil(t, p.LowVolumeThreshold)
	assert.Equal(t, int64(1), *p.LowVolumeThreshold)
}

func TestLoadProfileNullThresholdDisablesExclusion(t *testing.T) {
	path := writeProfile(t, `
exclude_low_volume_threshold: null
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Nil(t, p.LowVolumeThreshold)
}

func TestLoadProfileExplicitThreshold(t *testing.T) {
	path := writeProfile(t, `
exclude_low_volume_threshold: 10
date_format: "01/02/2006"
encoding: windows-1252
sheet: Sales
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	require.NotNil(t, p.LowVolumeThreshold)
	assert.Equal(t, int64(10), *p.LowVolumeThreshold)
	assert.Equal(t, "01/02/2006", p.DateFormat)
	assert.Equal(t, "windows-1252", p.Encoding)
	assert.Equal(t, "Sales", p.Sheet)
}

func TestLoadProfileUnknownField(t *testing.T) {
	path := writeProfile(t, `
columns:
  some-col: bogus_field
`)

	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus_field")
}

func TestLoadProfileUnknownRequired(t *testing.T) {
	path := writeProfile(t, `
required: [price, nachos]
`)

	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nachos")
}

func TestLoadProfileMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadProfile("/nonexistent/profile.yaml")
	assert.Error(t, err)
}

func TestLoadProfileBadYAML(t *testing.T) {
	path := writeProfile(t, "columns: [not, a, map]")

	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestProfileFingerprint(t *testing.T) {
	t.Parallel()

	a := DefaultProfile()
	b := DefaultProfile()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Strict = false
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := DefaultProfile()
	c.LowVolumeThreshold = nil
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := DefaultProfile()
	d.Columns["extra-col"] = FieldName
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}
