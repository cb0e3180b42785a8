package source

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/popvault/popdash/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV parses CSV bytes into rows. A leading UTF-8 BOM is
// stripped, rows may have varying field counts, and quoting is lenient.
// A non-empty encoding runs the bytes through the named charset decoder
// first.
func DecodeCSV(data []byte, encoding string) ([][]string, error) {
	var r io.Reader = bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))

	if encoding != "" && !strings.EqualFold(encoding, "utf-8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "source: unsupported charset %q", encoding)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(&model.ParseError{Err: err}, "source: decode csv")
	}
	return rows, nil
}
