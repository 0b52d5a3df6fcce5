// Package tabular reads delimited text, spreadsheets and parquet files into
// header-plus-rows tables, recovering the header row when it is not the first line.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/tabdex/internal/domain"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
)

// DetectWindow is how many leading non-blank rows auto-detection inspects.
const DetectWindow = 5

// Mode selects how the header row is located.
type Mode int

const (
	// ModeAuto picks the row with the most non-empty cells among the first DetectWindow rows.
	ModeAuto Mode = iota
	// ModeFixed uses SkipRows + HeaderRow as the header position.
	ModeFixed
)

// Options control header recovery and parsing.
type Options struct {
	Mode Mode
	// SkipRows is the number of leading physical rows dropped in fixed mode.
	SkipRows int
	// HeaderRow is the header offset counted after SkipRows in fixed mode.
	HeaderRow int
	// Delimiter overrides the field separator. Zero means derive it from the file name.
	Delimiter rune
	// Sheet selects an xlsx worksheet. Empty means the first one.
	Sheet string
}

// Table is the reader output: one header list and the data rows below it.
type Table struct {
	Headers   []string
	Rows      []record.RawRow
	Malformed int
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Supported reports whether name has an extension this package can read.
func Supported(name string) bool {
	switch Ext(name) {
	case ".csv", ".tsv", ".txt", ".xlsx", ".parquet":
		return true
	}
	return false
}

// Ext returns the lowercased file extension.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ReadFile reads a table from disk. A missing file yields an empty table.
func ReadFile(path string, opts Options) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceRead, filepath.Base(path), err)
	}
	return Read(filepath.Base(path), data, opts)
}

// Read parses data according to the extension of name.
func Read(name string, data []byte, opts Options) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch ext := Ext(name); ext {
	case ".csv", ".tsv", ".txt":
		if opts.Delimiter == 0 {
			opts.Delimiter = delimiterFor(ext, data)
		}
		t, err = ReadCSV(bytes.NewReader(data), opts)
	case ".xlsx":
		t, err = ReadXLSX(bytes.NewReader(data), opts)
	case ".parquet":
		t, err = ReadParquet(bytes.NewReader(data), int64(len(data)))
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceRead, name, err)
	}
	return t, nil
}

// ReadCSV parses delimited text. A line whose opening quote never closes is
// split on the delimiter as a row of its own and counted in Table.Malformed;
// the lines after it are read normally.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	lines := splitLines(string(data))
	var (
		rows      [][]string
		malformed int
	)
	for i := 0; i < len(lines); {
		if lines[i] == "" {
			i++
			continue
		}
		end, closed := recordEnd(lines, i, delim)
		if !closed {
			rows = append(rows, splitLoose(lines[i], delim))
			malformed++
			i++
			continue
		}
		rec, err := parseRecord(strings.Join(lines[i:end], "\n"), delim)
		if err != nil {
			rows = append(rows, splitLoose(lines[i], delim))
			malformed++
			i++
			continue
		}
		rows = append(rows, rec)
		i = end
	}

	t := FromRows(rows, opts)
	t.Malformed = malformed
	return t, nil
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// recordEnd returns the index one past the last physical line of the record
// starting at lines[start]. closed is false when a quoted field opened there
// is still open at the end of input.
func recordEnd(lines []string, start int, delim rune) (end int, closed bool) {
	inQuotes := false
	for i := start; i < len(lines); i++ {
		fieldStart := !inQuotes
		rs := []rune(lines[i])
		for j := 0; j < len(rs); j++ {
			c := rs[j]
			switch {
			case inQuotes && c == '"':
				if j+1 < len(rs) && rs[j+1] == '"' {
					j++
					continue
				}
				inQuotes = false
			case !inQuotes && c == '"' && fieldStart:
				inQuotes = true
			}
			fieldStart = !inQuotes && c == delim
		}
		if !inQuotes {
			return i + 1, true
		}
	}
	return len(lines), false
}

func parseRecord(text string, delim rune) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	rec, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return rec, nil
}

func splitLoose(line string, delim rune) []string {
	cells := strings.Split(line, string(delim))
	for i, c := range cells {
		cells[i] = strings.Trim(c, `"`)
	}
	return cells
}

// FromRows locates the header in raw rows and returns the resulting table.
// Fewer than two non-blank rows produce an empty table.
func FromRows(raw [][]string, opts Options) *Table {
	for _, row := range raw {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}

	var header []string
	var data [][]string

	switch opts.Mode {
	case ModeFixed:
		pos := opts.SkipRows + opts.HeaderRow
		if pos < 0 || pos >= len(raw) {
			return &Table{}
		}
		header = raw[pos]
		data = nonBlank(raw[pos+1:])
		if len(data) == 0 {
			return &Table{}
		}
	default:
		rows := nonBlank(raw)
		if len(rows) < 2 {
			return &Table{}
		}
		pos := DetectHeader(rows)
		header = rows[pos]
		data = rows[pos+1:]
	}

	width := len(header)
	out := make([]record.RawRow, 0, len(data))
	for _, row := range data {
		width = max(width, len(row))
		out = append(out, record.RawRow(row))
	}
	return &Table{Headers: nameColumns(header, width), Rows: out}
}

// DetectHeader returns the index of the row with the strictly greatest number
// of non-empty cells among the first DetectWindow rows. Ties keep the earliest row.
func DetectHeader(rows [][]string) int {
	best, bestCount := 0, -1
	for i := 0; i < len(rows) && i < DetectWindow; i++ {
		if n := filled(rows[i]); n > bestCount {
			best, bestCount = i, n
		}
	}
	return best
}

func filled(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

func nonBlank(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if filled(r) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// nameColumns pads the header to width and names blank cells column_<n>.
func nameColumns(header []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		if i < len(header) && header[i] != "" {
			out[i] = header[i]
			continue
		}
		out[i] = "column_" + strconv.Itoa(i+1)
	}
	return out
}

func delimiterFor(ext string, data []byte) rune {
	switch ext {
	case ".tsv":
		return '\t'
	case ".txt":
		return sniff(data)
	}
	return ','
}

// sniff picks the most frequent of comma, tab and semicolon on the first line.
func sniff(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{'\t', ';'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// FileReader reads files from disk with fixed Options.
type FileReader struct {
	Options Options
}

// ReadFile reads path with the reader's options.
func (r FileReader) ReadFile(path string) (*Table, error) {
	return ReadFile(path, r.Options)
}
