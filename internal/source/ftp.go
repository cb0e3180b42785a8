package source

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// fetchFTP downloads one file over FTP with anonymous login. Some
// price-guide archives are still published on plain FTP mirrors.
func fetchFTP(ctx context.Context, rawURL string, opts Options) ([]byte, error) {
	host, p, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	zap.L().Debug("source: ftp fetch", zap.String("host", host), zap.String("path", p))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp dial")
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		return nil, eris.Wrap(err, "source: ftp login")
	}

	resp, err := conn.Retr(p)
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp retrieve")
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp read")
	}
	return data, nil
}

// parseFTPURL extracts host (with port, defaulting to 21) and path
// from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "source: parse ftp url")
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	if u.Path == "" {
		return "", "", eris.New("source: empty path in ftp url")
	}
	return host, u.Path, nil
}
