package model

// Diagnostics summarizes one load: row accounting, null tallies, and
// cell-level coercion failures. Bad cells never fail a load; these
// counts are how callers observe them.
//
// Null* counts cover records retained after the low-volume exclusion,
// so they compare directly against RecordCount. Bad* and
// NegativeVolume count coercion events across all data rows, including
// rows the exclusion later drops.
type Diagnostics struct {
	RowCount          int      `json:"row_count"`
	RecordCount       int      `json:"record_count"`
	LowVolumeExcluded int      `json:"low_volume_excluded"`
	NullPrice         int      `json:"null_price"`
	NullVolume        int      `json:"null_volume"`
	NullReleaseDate   int      `json:"null_release_date"`
	BadPrice          int      `json:"bad_price"`
	BadVolume         int      `json:"bad_volume"`
	BadDate           int      `json:"bad_date"`
	NegativeVolume    int      `json:"negative_volume"`
	DroppedColumns    []string `json:"dropped_columns,omitempty"`
	DuplicateHeaders  []string `json:"duplicate_headers,omitempty"`
}

// AllPricesMissing reports whether every retained record lacks a price.
// Queries over such a dataset are refused by callers because price
// filtering and price ranking would be meaningless. An empty dataset is
// not "all missing"; it is just empty.
func (d Diagnostics) AllPricesMissing() bool {
	return d.RecordCount > 0 && d.NullPrice == d.RecordCount
}

// AllVolumesMissing reports whether every retained record lacks a volume.
func (d Diagnostics) AllVolumesMissing() bool {
	return d.RecordCount > 0 && d.NullVolume == d.RecordCount
}
