package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading dataset sources.
type Fetcher interface {
	// Download fetches the source and returns its body.
	Download(ctx context.Context, source string) (io.ReadCloser, error)
}

// Set dispatches a source to the fetcher registered for its scheme.
type Set struct {
	HTTP Fetcher
	FTP  Fetcher
	File Fetcher
}

// Scheme returns the lower-cased URL scheme of source, or "file" for plain paths.
func Scheme(source string) string {
	u, err := url.Parse(source)
	if err != nil || len(u.Scheme) <= 1 {
		// no scheme, or a Windows drive letter
		return "file"
	}
	return strings.ToLower(u.Scheme)
}

// For returns the fetcher that handles source.
func (s Set) For(source string) (Fetcher, error) {
	var f Fetcher
	switch Scheme(source) {
	case "http", "https":
		f = s.HTTP
	case "ftp":
		f = s.FTP
	case "file":
		f = s.File
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme in %q", source)
	}
	if f == nil {
		return nil, eris.Errorf("fetcher: no fetcher configured for %q", source)
	}
	return f, nil
}

// Download fetches source with the matching fetcher.
func (s Set) Download(ctx context.Context, source string) (io.ReadCloser, error) {
	f, err := s.For(source)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, source)
}

// DownloadToFile copies source into w and returns the bytes written.
func DownloadToFile(ctx context.Context, f Fetcher, source string, w io.Writer) (int64, error) {
	body, err := f.Download(ctx, source)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	n, err := io.Copy(w, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
