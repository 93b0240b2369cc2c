// Package dataset loads the video-game sales table behind the declarative
// views and computes the aggregates those views plot.
package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Column names the loader requires.
const (
	ColPlatform    = "Platform"
	ColGenre       = "Genre"
	ColYear        = "Year"
	ColGlobalSales = "Global_Sales"
	ColName        = "Name"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

//go:embed sample/videogames_wide.csv
var sample []byte

// SampleSource is the source name reported for the embedded sample.
const SampleSource = "embedded:videogames_wide.csv"

// Record is one row of the table.
type Record struct {
	Name        string          `json:"name,omitempty"`
	Platform    string          `json:"platform"`
	Genre       string          `json:"genre"`
	Year        int             `json:"year,omitempty"`
	HasYear     bool            `json:"hasYear"`
	GlobalSales decimal.Decimal `json:"globalSales"`
}

// Table is an in-memory, read-only set of records.
type Table struct {
	Source  string
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// FetchError reports a failed dataset load.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading dataset from %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// Cause returns the underlying error for pkg/errors.Cause.
func (e *FetchError) Cause() error { return e.Err }

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load reads the table once from source: an http(s) URL, a file path, or the
// embedded sample when source is empty. Any failure is a *FetchError.
func Load(ctx context.Context, source string) (*Table, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	name := source
	switch {
	case source == "":
		name = SampleSource
		rc = io.NopCloser(bytes.NewReader(sample))
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		rc, err = fetch(ctx, source)
	default:
		rc, err = os.Open(source)
	}
	if err != nil {
		return nil, &FetchError{Source: name, Err: err}
	}
	defer rc.Close()

	t, err := Parse(rc)
	if err != nil {
		return nil, &FetchError{Source: name, Err: err}
	}
	t.Source = name
	return t, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Parse reads a CSV table with a header row. An empty or non-numeric Year
// marks the year as absent; an empty Global_Sales counts as 0.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMissingColumn, "empty input")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{ColPlatform, ColGenre, ColYear, ColGlobalSales} {
		if _, ok := idx[col]; !ok {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", col)
		}
	}
	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t := &Table{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading row")
		}
		line, _ := cr.FieldPos(0)

		rec := Record{
			Name:     field(row, ColName),
			Platform: field(row, ColPlatform),
			Genre:    field(row, ColGenre),
		}
		rec.Year, rec.HasYear = parseYear(field(row, ColYear))

		sales := field(row, ColGlobalSales)
		if sales == "" {
			rec.GlobalSales = decimal.Zero
		} else {
			rec.GlobalSales, err = decimal.NewFromString(sales)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: %s %q", line, ColGlobalSales, sales)
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Years outside this range are treated as unknown.
const (
	minYear = 0
	maxYear = 9999
)

func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < minYear || v > maxYear {
		return 0, false
	}
	return int(v), true
}
