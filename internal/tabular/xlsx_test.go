package tabular

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/tabdex/internal/domain/record"
)

func xlsxFixture(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSX_AutoDetect(t *testing.T) {
	data := xlsxFixture(t, "Sheet1", [][]any{
		{"Labour force survey 2023"},
		{"Province", "Unemployment rate", "Year"},
		{"Kigali", "14.1", "2023"},
	})

	tbl, err := ReadXLSX(bytes.NewReader(data), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Province", "Unemployment rate", "Year"}, tbl.Headers)
	assert.Equal(t, []record.RawRow{{"Kigali", "14.1", "2023"}}, tbl.Rows)
}

func TestReadXLSX_NamedSheet(t *testing.T) {
	data := xlsxFixture(t, "GDP", [][]any{{"Year", "GDP"}, {"2022", "13.3"}})

	tbl, err := ReadXLSX(bytes.NewReader(data), Options{Sheet: "GDP"})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	_, err = ReadXLSX(bytes.NewReader(data), Options{Sheet: "Missing"})
	require.Error(t, err)
}

func TestRead_DispatchesXLSX(t *testing.T) {
	data := xlsxFixture(t, "Sheet1", [][]any{{"District", "Value"}, {"Huye", "4"}})
	tbl, err := Read("upload.XLSX", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}
