package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FileFetcher opens local paths and file:// URLs.
type FileFetcher struct{}

// NewFileFetcher returns a FileFetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Download opens the file named by source.
func (f *FileFetcher) Download(ctx context.Context, source string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "file: context cancelled")
	}
	path := source
	if Scheme(source) == "file" {
		if u, err := url.Parse(source); err == nil && u.Scheme == "file" {
			path = u.Path
		}
	}
	zap.L().Debug("file: opening", zap.String("path", path))
	fh, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "file: open")
	}
	return fh, nil
}
