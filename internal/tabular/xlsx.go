package tabular

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one worksheet and applies the same header recovery as ReadCSV.
func ReadXLSX(r io.Reader, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	sheet := sheets[0]
	if opts.Sheet != "" {
		if !slices.Contains(sheets, opts.Sheet) {
			return nil, fmt.Errorf("sheet %q not found", opts.Sheet)
		}
		sheet = opts.Sheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return FromRows(rows, opts), nil
}
