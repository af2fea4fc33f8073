// Package fetcher downloads dataset sources over HTTP, FTP or the local
// filesystem and parses them as CSV or XLSX rows.
package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads CSV rows (header included) and sends them to a channel.
// Errors are sent on the error channel. Both channels are closed when
// processing completes; cancel ctx to stop a reader that stops consuming.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ChanReader adapts the channels of StreamCSV to a pull-style row reader:
// Read returns the next row, the stream's error, or io.EOF.
type ChanReader struct {
	rows <-chan []string
	errs <-chan error
}

// NewChanReader wraps a row/error channel pair.
func NewChanReader(rows <-chan []string, errs <-chan error) *ChanReader {
	return &ChanReader{rows: rows, errs: errs}
}

// Read returns the next row.
func (c *ChanReader) Read() ([]string, error) {
	if row, ok := <-c.rows; ok {
		return row, nil
	}
	if err, ok := <-c.errs; ok && err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// SliceReader serves pre-read rows through the same pull interface.
type SliceReader struct {
	rows [][]string
	next int
}

// NewSliceReader wraps rows.
func NewSliceReader(rows [][]string) *SliceReader {
	return &SliceReader{rows: rows}
}

// Read returns the next row or io.EOF.
func (s *SliceReader) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}
