package tabular

import (
	"bytes"
	"slices"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gdpRow struct {
	Year   string `parquet:"year"`
	Region string `parquet:"region"`
	GDP    string `parquet:"gdp"`
}

func TestReadParquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, parquet.Write(&buf, []gdpRow{
		{Year: "2021", Region: "Kigali", GDP: "5.1"},
		{Year: "2022", Region: "Kigali", GDP: "6.0"},
		{},
	}))

	tbl, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"year", "region", "gdp"}, tbl.Headers)
	require.Equal(t, 2, tbl.Len(), "all-empty row is dropped")

	gdp := slices.Index(tbl.Headers, "gdp")
	year := slices.Index(tbl.Headers, "year")
	assert.Equal(t, "5.1", tbl.Rows[0][gdp])
	assert.Equal(t, "2022", tbl.Rows[1][year])
}

func TestParquetHeaders(t *testing.T) {
	got := parquetHeaders([][]string{
		{"name"},
		{"tags", "list", "element"},
		{"address", "city"},
		{},
	})
	assert.Equal(t, []string{"name", "tags", "address.city", "column_4"}, got)
}
