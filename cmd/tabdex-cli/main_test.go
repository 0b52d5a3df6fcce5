package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tabdex "github.com/kailas-cloud/tabdex/pkg/sdk"
)

const (
	povertyCSV = "EICV poverty,,\nDistrict,Poverty rate,Year\nNyamagabe,51.9,2017\nGasabo,10.5,2024\n"

	catalogCSV = `idno,title,nation,authoring_entity,year_start,year_end,created,changed
RWA-NISR-EICV5-2016-v1,Integrated Household Living Conditions Survey 5,Rwanda,National Institute of Statistics,2016,2017,2018-01-10,2019-02-01
RWA-NISR-LFS-2022,Labour Force Survey 2022,Rwanda,National Institute of Statistics,2022,,2023-03-01,2023-03-01
`
)

func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poverty.csv"), []byte(povertyCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.csv"), []byte(catalogCSV), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"tabdex"}, args...))
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	dir := dataDir(t)

	t.Run("json output", func(t *testing.T) {
		out, err := run(t, "-d", dir, "--json", "search", "nyamagabe")
		require.NoError(t, err)

		var res tabdex.SearchResponse
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Len(t, res.Results, 1)
		assert.Equal(t, "DATA", res.Results[0].Document.Type)
	})

	t.Run("table output", func(t *testing.T) {
		out, err := run(t, "-d", dir, "search", "gasabo")
		require.NoError(t, err)
		assert.Contains(t, out, "Gasabo")
		assert.Contains(t, out, "title")
	})

	t.Run("short query prints message", func(t *testing.T) {
		out, err := run(t, "-d", dir, "search", "a")
		require.NoError(t, err)
		assert.Contains(t, out, "at least 2 characters")
	})

	t.Run("indexes extra files", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "projects.csv")
		require.NoError(t, os.WriteFile(file, []byte("id,name,sector\np1,Kigali Clinic,health\n"), 0o600))

		out, err := run(t, "-d", dir, "search", "-f", file, "--type", "project", "clinic")
		require.NoError(t, err)
		assert.Contains(t, out, "project-p1")
	})

	t.Run("query is required", func(t *testing.T) {
		_, err := run(t, "-d", dir, "search")
		require.Error(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := run(t, "-d", dir, "search", "--from", "yesterday", "poverty")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--from")
	})
}

func TestIngestCommand(t *testing.T) {
	dir := dataDir(t)
	file := filepath.Join(t.TempDir(), "hospitals.csv")
	require.NoError(t, os.WriteFile(file, []byte("Ministry of Health\nid,name\nh1,Butaro Hospital\n"), 0o600))

	out, err := run(t, "-d", dir, "--json", "ingest", "--template", "project", "--skip-rows", "1", file)
	require.NoError(t, err)

	var res []tabdex.IngestResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].Count)
	assert.Equal(t, "project-h1", res[0].Sample[0].ID)

	_, err = run(t, "-d", dir, "ingest")
	require.Error(t, err)

	_, err = run(t, "-d", dir, "ingest", filepath.Join(dir, "report.pdf"))
	require.Error(t, err)
}

func TestDatasetsCommand(t *testing.T) {
	out, err := run(t, "-d", dataDir(t), "datasets")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: live, rows: 2")
	assert.Contains(t, out, "poverty")
	assert.Contains(t, out, "Gasabo,Nyamagabe")
}

func TestSourcesCommand(t *testing.T) {
	dir := dataDir(t)

	out, err := run(t, "-d", dir, "sources", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TEMPLATE")

	_, err = run(t, "-d", dir, "sources", "delete", "01hzzzzzzzzzzzzzzzzzzzzzzz")
	require.ErrorIs(t, err, tabdex.ErrNotFound)

	_, err = run(t, "-d", dir, "sources", "delete")
	require.Error(t, err)
}

func TestCatalogCommand(t *testing.T) {
	dir := dataDir(t)

	out, err := run(t, "-d", dir, "catalog", "rwa-nisr-lfs-2022")
	require.NoError(t, err)
	assert.Contains(t, out, "Labour Force Survey 2022")

	out, err = run(t, "-d", dir, "catalog", "--year", "2017")
	require.NoError(t, err)
	assert.Contains(t, out, "RWA-NISR-EICV5-2016-v1")
	assert.NotContains(t, out, "RWA-NISR-LFS-2022")

	out, err = run(t, "-d", dir, "catalog", "--q", "labour")
	require.NoError(t, err)
	assert.Contains(t, out, "RWA-NISR-LFS-2022")

	_, err = run(t, "-d", dir, "catalog", "missing")
	require.ErrorIs(t, err, tabdex.ErrNotFound)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "-l", "loud", "datasets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
