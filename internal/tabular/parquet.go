package tabular

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/tabdex/internal/domain/record"
)

const parquetBatch = 1000

// ReadParquet reads every row group of a parquet file. Column names come from
// the schema, so no header recovery is needed. Repeated values are joined with ";".
func ReadParquet(r io.ReaderAt, size int64) (*Table, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	headers := parquetHeaders(pf.Schema().Columns())
	t := &Table{Headers: headers}

	for _, rg := range pf.RowGroups() {
		if err := readParquetGroup(rg, len(headers), t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func readParquetGroup(rg parquet.RowGroup, width int, t *Table) error {
	rows := parquet.NewRowGroupReader(rg)
	buf := make([]parquet.Row, parquetBatch)

	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			if row := parquetRow(buf[i], width); filled(row) > 0 {
				t.Rows = append(t.Rows, row)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
}

// parquetRow flattens a generic row by leaf column index.
func parquetRow(row parquet.Row, width int) record.RawRow {
	cells := make([][]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		cells[col] = append(cells[col], strings.TrimSpace(v.String()))
	}
	out := make(record.RawRow, width)
	for i, c := range cells {
		out[i] = strings.Join(c, ";")
	}
	return out
}

// parquetHeaders names leaf columns by their top-level field, falling back to
// the dotted path for nested structs.
func parquetHeaders(paths [][]string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		switch {
		case len(path) == 0:
			out[i] = fmt.Sprintf("column_%d", i+1)
		case len(path) == 1 || path[1] == "list":
			out[i] = path[0]
		default:
			out[i] = strings.Join(path, ".")
		}
	}
	return out
}
