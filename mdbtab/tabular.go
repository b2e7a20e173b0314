package mdbtab

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrUnsupportedFileType is returned by Load for any suffix other than .csv or .xlsx.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoHeader is returned when the file has no header row.
	ErrNoHeader = errors.New("no header row")

	// ErrBadHeader is returned for empty or duplicate column names.
	ErrBadHeader = errors.New("bad header")

	// ErrRowWidth is returned when a row has more cells than the header.
	ErrRowWidth = errors.New("row wider than header")
)

const (
	SuffixCSV  = ".csv"
	SuffixXLSX = ".xlsx"
)

// Option configures how a tabular file is read.
type Option func(*config)

type config struct {
	sheet      string
	comma      rune
	rawStrings bool
}

func newConfig(opts []Option) *config {
	cfg := &config{comma: ','}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithSheet selects the spreadsheet tab to read.
// The first sheet is read by default.
func WithSheet(name string) Option {
	return func(c *config) {
		c.sheet = name
	}
}

// WithComma sets the CSV field delimiter.
func WithComma(comma rune) Option {
	return func(c *config) {
		c.comma = comma
	}
}

// WithRawStrings turns off type inference so every non-empty cell is a string.
func WithRawStrings() Option {
	return func(c *config) {
		c.rawStrings = true
	}
}

// Supported reports whether Load can read the named file, judged purely by suffix.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case SuffixCSV, SuffixXLSX:
		return true
	default:
		return false
	}
}

// Load reads the entire file into memory and returns one document per data row.
// The file type is chosen by suffix, anything other than .csv or .xlsx
// returns ErrUnsupportedFileType without opening the file.
func Load(path string, opts ...Option) ([]bson.D, error) {
	suffix := strings.ToLower(filepath.Ext(path))
	if suffix != SuffixCSV && suffix != SuffixXLSX {
		return nil, fmt.Errorf("%q: %w", suffix, ErrUnsupportedFileType)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if suffix == SuffixCSV {
		return ReadCSV(file, opts...)
	}
	return ReadXLSX(file, opts...)
}

////////////////////////////////////////////////////////////////////////////////

// cellConverter turns the text of the cell at row, col (zero based, header is row 0)
// into a document value.
type cellConverter func(row, col int, cell string) (interface{}, error)

// toDocuments converts header plus data rows into documents, one per row.
// Blank rows are skipped and short rows are padded with nil values.
func toDocuments(rows [][]string, convert cellConverter) ([]bson.D, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	header, err := checkHeader(rows[0])
	if err != nil {
		return nil, err
	}

	documents := make([]bson.D, 0, len(rows)-1)
	for r, row := range rows[1:] {
		if blank(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells for %d columns: %w", r+2, len(row), len(header), ErrRowWidth)
		}

		document := make(bson.D, len(header))
		for c, name := range header {
			document[c].Key = name
			if c < len(row) {
				value, err := convert(r+1, c, row[c])
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", r+2, name, err)
				}
				document[c].Value = value
			}
		}
		documents = append(documents, document)
	}

	return documents, nil
}

func checkHeader(row []string) ([]string, error) {
	if blank(row) {
		return nil, ErrNoHeader
	}

	header := make([]string, len(row))
	seen := make(map[string]bool, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("column %d has no name: %w", i+1, ErrBadHeader)
		}
		if seen[name] {
			return nil, fmt.Errorf("column %q repeated: %w", name, ErrBadHeader)
		}
		seen[name] = true
		header[i] = name
	}

	return header, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// missing holds the cell texts stored as null, the same set pandas treats as NA by default.
var missing = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
	"-NaN": true, "-nan": true, "NaN": true, "nan": true,
	"<NA>": true, "N/A": true, "n/a": true, "NA": true,
	"NULL": true, "null": true, "None": true,
}

// isMissing reports whether the trimmed cell text stands for a missing value.
func isMissing(trimmed string) bool {
	return trimmed == "" || missing[trimmed]
}

// cellValue converts a cell to the most specific of
// nil, int64, float64, bool or string.
func cellValue(cell string, raw bool) interface{} {
	if cell == "" {
		return nil
	}
	if raw {
		return cell
	}

	trimmed := strings.TrimSpace(cell)
	if isMissing(trimmed) {
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}

	return cell
}
