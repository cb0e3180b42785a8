// Package ingest turns raw tabular rows into canonical sale records:
// header mapping, value coercion, derived fields, and the baseline
// low-volume exclusion.
package ingest

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Canonical field names records are keyed by.
const (
	FieldCategory    = "category"
	FieldName        = "name"
	FieldPrice       = "price"
	FieldVolume      = "volume"
	FieldReleaseDate = "release_date"
)

// Profile controls how raw rows become canonical records: which source
// headers feed which canonical fields, which fields must be present,
// the date layout, the numeric coercion mode, and the low-volume
// exclusion cutoff.
type Profile struct {
	// Columns maps source header names to canonical field names.
	// Matching is exact after the first header cell is stripped of a
	// UTF-8 BOM; source columns with no entry are dropped.
	Columns map[string]string `yaml:"columns"`

	// Required lists canonical fields that must resolve to a source
	// column. Loading fails with a SchemaError when one does not.
	Required []string `yaml:"required"`

	// DateFormat is the time.Parse layout for release_date cells.
	DateFormat string `yaml:"date_format"`

	// Encoding optionally names a non-UTF-8 source charset
	// (WHATWG name, e.g. "windows-1252").
	Encoding string `yaml:"encoding"`

	// Sheet optionally names the workbook sheet to read. Empty means
	// the first sheet.
	Sheet string `yaml:"sheet"`

	// Strict selects strict numeric coercion. Strict parsing nulls any
	// cell with residue after currency and comma stripping; lenient
	// parsing salvages the first number run found anywhere in the cell.
	Strict bool `yaml:"strict_numeric_coercion"`

	// LowVolumeThreshold drops records whose volume is non-null and at
	// or below this value. Nil (YAML null) disables the exclusion.
	LowVolumeThreshold *int64 `yaml:"exclude_low_volume_threshold"`
}

// DefaultProfile returns the built-in profile for the stock vendor
// export format.
func DefaultProfile() *Profile {
	threshold := int64(1)
	return &Profile{
		Columns: map[string]string{
			"console-name": FieldCategory,
			"product-name": FieldName,
			"new-price":    FieldPrice,
			"sales-volume": FieldVolume,
			"release-date": FieldReleaseDate,
		},
		Required:           []string{FieldPrice},
		DateFormat:         "2006-01-02",
		Strict:             true,
		LowVolumeThreshold: &threshold,
	}
}

// LoadProfile reads a profile from a YAML file. Absent keys keep their
// defaults; an explicit columns or required list replaces the default
// one, and an explicit null threshold disables the exclusion.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read profile %s", path)
	}

	p := DefaultProfile()
	// Lists given in the file replace the defaults rather than merging
	// into them, so clear before decoding and restore if untouched.
	p.Columns = nil
	p.Required = nil

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse profile %s", path)
	}

	if p.Columns == nil {
		p.Columns = DefaultProfile().Columns
	}
	if p.Required == nil {
		p.Required = []string{FieldPrice}
	}
	if p.DateFormat == "" {
		p.DateFormat = "2006-01-02"
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) validate() error {
	known := map[string]bool{
		FieldCategory:    true,
		FieldName:        true,
		FieldPrice:       true,
		FieldVolume:      true,
		FieldReleaseDate: true,
	}

	var problems []string
	for src, dst := range p.Columns {
		if !known[dst] {
			problems = append(problems, fmt.Sprintf("column %q maps to unknown field %q", src, dst))
		}
	}
	for _, field := range p.Required {
		if !known[field] {
			problems = append(problems, fmt.Sprintf("required lists unknown field %q", field))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return eris.Errorf("ingest: invalid profile: %s", strings.Join(problems, "; "))
}

// Fingerprint returns a stable hash of the profile's load-relevant
// settings. Combined with a content hash of the raw bytes it keys
// snapshots: same bytes plus same profile always load to the same
// records.
func (p *Profile) Fingerprint() string {
	cols := make([]string, 0, len(p.Columns))
	for src, dst := range p.Columns {
		cols = append(cols, src+"="+dst)
	}
	sort.Strings(cols)

	h := sha256.New()
	fmt.Fprintf(h, "cols:%s|req:%s|date:%s|enc:%s|sheet:%s|strict:%t|",
		strings.Join(cols, ","), strings.Join(p.Required, ","),
		p.DateFormat, p.Encoding, p.Sheet, p.Strict)
	if p.LowVolumeThreshold != nil {
		fmt.Fprintf(h, "lowvol:%d", *p.LowVolumeThreshold)
	} else {
		fmt.Fprint(h, "lowvol:off")
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
