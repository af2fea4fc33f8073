// Package dataset resolves a data source into the records the plot draws.
package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/healthplot/internal/fetcher"
	"github.com/sells-group/healthplot/internal/model"
)

// Format names an on-disk dataset encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatZIP  Format = "zip"
)

// ParseFormat accepts a config value ("" or "auto" means detect).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, "auto":
		return FormatAuto, nil
	case FormatCSV, FormatXLSX, FormatJSON, FormatZIP:
		return f, nil
	default:
		return "", eris.Errorf("dataset: unknown format %q", s)
	}
}

// DetectFormat picks the format from the extension of source, ignoring any
// URL query string. Unknown extensions are read as CSV.
func DetectFormat(source string) Format {
	p := source
	if i := strings.IndexAny(p, "?#"); i >= 0 && fetcher.Scheme(source) != "file" {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(filepath.ToSlash(p))) {
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	case ".zip":
		return FormatZIP
	default:
		return FormatCSV
	}
}

// DataLoadFailure reports a source that could not be fetched or parsed.
type DataLoadFailure struct {
	Source string
	Err    error
}

func (e *DataLoadFailure) Error() string {
	return "dataset: load " + e.Source + ": " + e.Err.Error()
}

func (e *DataLoadFailure) Unwrap() error { return e.Err }

// ErrNoRecords is wrapped by DataLoadFailure when a source parses cleanly
// but holds no usable rows.
var ErrNoRecords = eris.New("dataset: no records")

// Loader fetches and decodes datasets.
type Loader struct {
	Fetchers fetcher.Set
	// Format overrides extension detection when set.
	Format Format
	// Sheet names the XLSX worksheet; empty means the first one.
	Sheet string
	Log   *zap.Logger
}

// Load resolves source into records. Every failure is a *DataLoadFailure.
func (l *Loader) Load(ctx context.Context, source string) ([]model.Record, error) {
	log := l.Log
	if log == nil {
		log = zap.L()
	}
	log = log.With(zap.String("source", source))

	format := l.Format
	if format == FormatAuto {
		format = DetectFormat(source)
	}

	var (
		recs []model.Record
		err  error
	)
	if format == FormatCSV || format == FormatJSON {
		recs, err = l.loadStream(ctx, source, format)
	} else {
		recs, err = l.loadFile(ctx, source, format)
	}
	if err != nil {
		log.Error("dataset load failed", zap.Error(err))
		return nil, &DataLoadFailure{Source: source, Err: err}
	}

	recs = dropUnlabelled(recs, log)
	if len(recs) == 0 {
		return nil, &DataLoadFailure{Source: source, Err: ErrNoRecords}
	}
	log.Info("dataset loaded", zap.Int("records", len(recs)), zap.String("format", string(format)))
	return recs, nil
}

func (l *Loader) loadStream(ctx context.Context, source string, format Format) ([]model.Record, error) {
	body, err := l.Fetchers.Download(ctx, source)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	return decode(ctx, body, format)
}

// loadFile stages source on disk for formats that need random access.
func (l *Loader) loadFile(ctx context.Context, source string, format Format) ([]model.Record, error) {
	dir, err := os.MkdirTemp("", "healthplot-*")
	if err != nil {
		return nil, eris.Wrap(err, "dataset: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	f, err := l.Fetchers.For(source)
	if err != nil {
		return nil, err
	}
	local := filepath.Join(dir, "source."+string(format))
	out, err := os.Create(local)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: create temp file")
	}
	_, err = fetcher.DownloadToFile(ctx, f, source, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	if format == FormatZIP {
		inner, err := fetcher.ExtractZIPSingle(local, filepath.Join(dir, "unzipped"))
		if err != nil {
			return nil, err
		}
		format = DetectFormat(inner)
		if format == FormatZIP {
			return nil, eris.Errorf("dataset: nested archive %q", filepath.Base(inner))
		}
		local = inner
	}

	if format == FormatXLSX {
		return l.readXLSX(local)
	}
	fh, err := os.Open(local)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open staged file")
	}
	defer fh.Close() //nolint:errcheck
	return decode(ctx, fh, format)
}

func (l *Loader) readXLSX(local string) ([]model.Record, error) {
	rows, err := fetcher.ReadXLSX(local, fetcher.XLSXOptions{SheetName: l.Sheet})
	if err != nil {
		return nil, err
	}
	return decodeRows(fetcher.NewSliceReader(rows))
}

func decode(ctx context.Context, r io.Reader, format Format) ([]model.Record, error) {
	if format == FormatJSON {
		return fetcher.CollectJSONArray[model.Record](ctx, r)
	}

	// the stream goroutine exits once ctx is done, even if decoding stops early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{TrimSpace: true, Comment: '#'})
	return decodeRows(fetcher.NewChanReader(rows, errs))
}

// decodeRows maps header-led rows onto records. Extra columns are ignored;
// a missing required column is an error.
func decodeRows(r csvutil.Reader) ([]model.Record, error) {
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "dataset: read header")
	}
	dec.DisallowMissingColumns = true

	var recs []model.Record
	for {
		var rec model.Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: decode row %d", len(recs)+1)
		}
		recs = append(recs, rec)
	}
}

func dropUnlabelled(recs []model.Record, log *zap.Logger) []model.Record {
	out := recs[:0]
	for _, r := range recs {
		if strings.TrimSpace(r.Abbr) == "" {
			log.Warn("dropping record without abbreviation", zap.String("state", r.State))
			continue
		}
		out = append(out, r)
	}
	return out
}
