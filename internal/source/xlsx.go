package source

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/popvault/popdash/internal/model"
)

// DecodeXLSX reads one sheet of a workbook into rows. An empty sheet
// name selects the first sheet.
func DecodeXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(&model.ParseError{Err: err}, "source: open workbook")
	}

	s, err := pickSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		s, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("source: sheet %q not found in workbook", name)
		}
		return s, nil
	}

	if len(f.Sheets) == 0 {
		return nil, eris.Wrap(&model.ParseError{Err: eris.New("workbook has no sheets")}, "source: decode xlsx")
	}
	return f.Sheets[0], nil
}
