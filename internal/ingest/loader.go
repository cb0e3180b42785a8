package ingest

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/popvault/popdash/internal/model"
)

const bom = "\ufeff"

// Load maps raw rows onto canonical records using the profile. rows[0]
// is the header row; data rows follow in input order, which the output
// preserves. Blank rows are skipped. Cell-level coercion failures null
// the value and count in the diagnostics; only a missing required
// column fails the load.
func Load(rows [][]string, p *Profile) ([]model.Record, model.Diagnostics, error) {
	var diag model.Diagnostics

	if len(rows) == 0 {
		return nil, diag, eris.Wrap(&model.ParseError{Err: eris.New("input has no header row")}, "ingest: load")
	}

	header := make([]string, len(rows[0]))
	copy(header, rows[0])
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	colIdx := make(map[string]int, len(p.Columns))
	for i, col := range header {
		col = strings.TrimSpace(col)
		header[i] = col

		canonical, mapped := p.Columns[col]
		if !mapped {
			diag.DroppedColumns = append(diag.DroppedColumns, col)
			continue
		}
		if _, dup := colIdx[canonical]; dup {
			diag.DuplicateHeaders = append(diag.DuplicateHeaders, col)
			zap.L().Warn("ingest: duplicate header, first occurrence wins",
				zap.String("column", col),
				zap.Int("index", i),
			)
			continue
		}
		colIdx[canonical] = i
	}
	if len(diag.DroppedColumns) > 0 {
		zap.L().Debug("ingest: dropped unmapped columns", zap.Strings("columns", diag.DroppedColumns))
	}

	var missing []string
	for _, field := range p.Required {
		if _, ok := colIdx[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, diag, eris.Wrap(&model.SchemaError{Missing: missing, Present: header}, "ingest: load")
	}

	var records []model.Record
	for rowNum, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		diag.RowCount++

		rec := model.Record{
			Category: getCol(row, colIdx, FieldCategory),
			Name:     getCol(row, colIdx, FieldName),
		}

		var bad bool
		rawPrice := getCol(row, colIdx, FieldPrice)
		if rec.Price, bad = coercePrice(rawPrice, p.Strict); bad {
			diag.BadPrice++
			zap.L().Warn("ingest: unparseable price, treating as null",
				zap.Int("row", rowNum+2),
				zap.String("value", rawPrice),
			)
		}

		rawVolume := getCol(row, colIdx, FieldVolume)
		if rec.Volume, bad = coerceVolume(rawVolume, p.Strict); bad {
			diag.BadVolume++
			zap.L().Warn("ingest: unparseable volume, treating as null",
				zap.Int("row", rowNum+2),
				zap.String("value", rawVolume),
			)
		}
		if rec.Volume != nil && *rec.Volume < 0 {
			diag.NegativeVolume++
		}

		rawDate := getCol(row, colIdx, FieldReleaseDate)
		if rec.ReleaseDate, bad = coerceDate(rawDate, p.DateFormat); bad {
			diag.BadDate++
		}

		// Derived fields; null inputs propagate.
		if rec.ReleaseDate != nil {
			year := rec.ReleaseDate.Year()
			rec.ReleaseYear = &year
		}
		if rec.Price != nil && rec.Volume != nil {
			mc := *rec.Price * float64(*rec.Volume)
			rec.MarketCap = &mc
		}

		// Baseline exclusion: drop thin sale counts, keep unknown ones.
		if rec.Volume != nil && p.LowVolumeThreshold != nil && *rec.Volume <= *p.LowVolumeThreshold {
			diag.LowVolumeExcluded++
			continue
		}

		if rec.Price == nil {
			diag.NullPrice++
		}
		if rec.Volume == nil {
			diag.NullVolume++
		}
		if rec.ReleaseDate == nil {
			diag.NullReleaseDate++
		}
		records = append(records, rec)
	}
	diag.RecordCount = len(records)

	zap.L().Debug("ingest: load complete",
		zap.Int("rows", diag.RowCount),
		zap.Int("records", diag.RecordCount),
		zap.Int("low_volume_excluded", diag.LowVolumeExcluded),
	)

	return records, diag, nil
}

// getCol safely retrieves a canonical field's cell from a row. Fields
// whose source column is absent or short read as empty.
func getCol(row []string, colIdx map[string]int, field string) string {
	idx, ok := colIdx[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
