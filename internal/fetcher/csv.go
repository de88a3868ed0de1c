// Package fetcher reads the local tabular sources (CSV and XLSX) the pipeline consumes.
package fetcher

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	HasHeader  bool            // if true, first row is skipped but sent to HeaderCh
	HeaderCh   chan<- []string // optional: receives the header row
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
	SkipRows   int // raw lines dropped before parsing (report preambles)
}

// Table is a fully read CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// StreamCSV reads a CSV file and sends rows to a channel.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		// Spreadsheet exports often start with a UTF-8 BOM that would stick to the first header.
		br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
		for i := 0; i < opts.SkipRows; i++ {
			if _, err := br.ReadString('\n'); err != nil {
				if err == io.EOF {
					errCh <- eris.Errorf("csv: input ended inside %d-row preamble", opts.SkipRows)
					return
				}
				errCh <- eris.Wrap(err, "csv: skip preamble")
				return
			}
		}

		reader := csv.NewReader(br)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		first := true
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

			if first && opts.HasHeader {
				first = false
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
						return
					}
				}
				continue
			}
			first = false

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

// ReadCSV collects a whole CSV stream into a Table. The first row after any
// preamble is the header.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	headerCh := make(chan []string, 1)
	opts.HasHeader = true
	opts.HeaderCh = headerCh

	rowCh, errCh := StreamCSV(ctx, r, opts)

	t := &Table{}
	for row := range rowCh {
		t.Rows = append(t.Rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	select {
	case t.Header = <-headerCh:
	default:
	}
	if t.Header == nil {
		return nil, eris.New("csv: no header row")
	}

	return t, nil
}

// ReadCSVFile opens path and reads it with ReadCSV. Errors name the file.
func ReadCSVFile(ctx context.Context, path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open")
	}
	defer f.Close()

	t, err := ReadCSV(ctx, f, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read %s", path)
	}
	return t, nil
}
