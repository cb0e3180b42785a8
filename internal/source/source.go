// Package source fetches raw dataset bytes from local or remote
// locations and decodes them into rows for the ingest layer. Fetching
// is scheme-dispatched (plain paths, file://, http(s)://, ftp://);
// decoding is chosen by file extension.
package source

import (
	"context"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Options configures fetching and decoding.
type Options struct {
	// Encoding optionally names the source charset (WHATWG name,
	// e.g. "windows-1252"). Empty means UTF-8.
	Encoding string

	// Sheet selects a workbook sheet by name. Empty means the first.
	Sheet string

	// Timeout bounds each remote fetch attempt. Zero means 30s.
	Timeout time.Duration

	// MaxRetries caps HTTP attempts. Zero means 3.
	MaxRetries int

	// UserAgent is sent on HTTP fetches.
	UserAgent string
}

// Rows fetches a dataset and decodes it into raw rows, header first.
func Rows(ctx context.Context, location string, opts Options) ([][]string, error) {
	data, err := Fetch(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	return Decode(location, data, opts)
}

// Decode turns fetched bytes into rows. Locations ending in .xlsx are
// read as workbooks; everything else parses as CSV.
func Decode(location string, data []byte, opts Options) ([][]string, error) {
	if strings.EqualFold(path.Ext(locationPath(location)), ".xlsx") {
		return DecodeXLSX(data, opts.Sheet)
	}
	return DecodeCSV(data, opts.Encoding)
}

// Fetch retrieves the raw bytes behind a URL or local path.
func Fetch(ctx context.Context, location string, opts Options) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse location %q", location)
	}

	switch u.Scheme {
	case "", "file":
		p := location
		if u.Scheme == "file" {
			p = u.Path
		}
		zap.L().Debug("source: reading local file", zap.String("path", p))
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "source: read %s", p)
		}
		return data, nil
	case "http", "https":
		return newHTTPFetcher(opts).fetch(ctx, location)
	case "ftp":
		return fetchFTP(ctx, location, opts)
	default:
		return nil, eris.Errorf("source: unsupported scheme %q in %s", u.Scheme, location)
	}
}

// locationPath returns the path component used for extension sniffing,
// so query strings on remote URLs do not hide the extension.
func locationPath(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return location
	}
	return u.Path
}
