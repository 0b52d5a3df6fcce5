package tabdex

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	povertyCSV = "EICV poverty,,\nDistrict,Poverty rate,Year\nNyamagabe,51.9,2017\nGasabo,10.5,2024\n"

	catalogCSV = `idno,title,nation,authoring_entity,year_start,year_end,created,changed
RWA-NISR-EICV5-2016-v1,Integrated Household Living Conditions Survey 5,Rwanda,National Institute of Statistics,2016,2017,2018-01-10,2019-02-01
RWA-NISR-LFS-2022,Labour Force Survey 2022,Rwanda,National Institute of Statistics,2022,,2023-03-01,2023-03-01
RWA-NISR-PHC-2012,Population and Housing Census,Rwanda,National Institute of Statistics,2012,2012,2013-05-01,2014-01-01
`

	projectsCSV = "id,name,sector,status\n" +
		"p1,Kigali Clinic,health,active\n" +
		"p2,Huye Water Plant,water,planned\n" +
		"p3,Musanze Road,transport,active\n" +
		"p4,Rubavu Clinic,health,done\n"
)

var fixedNow = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"poverty.csv": povertyCSV,
		"catalog.csv": catalogCSV,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{WithDataDir(writeDataDir(t)), WithClock(func() time.Time { return fixedNow })}
	eng, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(eng.Close)
	return eng
}

// --- Options ---

func TestEngineOptions(t *testing.T) {
	cfg := &engineConfig{}

	WithRedis("localhost:6380", "pass").apply(cfg)
	if cfg.driver != driverRedis || cfg.addrs[0] != "localhost:6380" || cfg.password != "pass" {
		t.Errorf("redis options = %+v", cfg)
	}

	WithDataDir("/srv/data").apply(cfg)
	WithCatalogFile("surveys.csv").apply(cfg)
	WithDatasetFile("gdp", "national_accounts.xlsx").apply(cfg)
	WithLoadWorkers(2).apply(cfg)
	if cfg.dataDir != "/srv/data" || cfg.catalogFile != "surveys.csv" || cfg.loadWorkers != 2 {
		t.Errorf("data options = %+v", cfg)
	}
	if cfg.files["gdp"] != "national_accounts.xlsx" {
		t.Errorf("files = %v", cfg.files)
	}

	WithIndex(16, 3).apply(cfg)
	WithRankByScore().apply(cfg)
	WithoutInitialBuild().apply(cfg)
	if cfg.maxTokenRunes != 16 || cfg.contextDepth != 3 || !cfg.rankByScore || !cfg.skipBuild {
		t.Errorf("index options = %+v", cfg)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &engineConfig{driver: "unknown"}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_UnknownDataset(t *testing.T) {
	_, err := New(context.Background(), WithDatasetFile("weather", "rain.csv"))
	if err == nil {
		t.Fatal("expected error for unknown dataset")
	}
}

func TestEngine_Close_NilStore(t *testing.T) {
	e := &Engine{}
	e.Close()
}

// --- Engine over a data directory ---

func TestEngine_SearchDatasets(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Search(context.Background(), Query{Text: "nyamagabe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result, got %+v", res)
	}
	hit := res.Results[0]
	if !strings.HasPrefix(hit.Document.ID, "poverty-") {
		t.Errorf("ID = %q", hit.Document.ID)
	}
	if hit.Document.Type != "DATA" {
		t.Errorf("Type = %q, want DATA", hit.Document.Type)
	}
	if len(hit.MatchedFields) == 0 || hit.MatchedFields[0] != "title" {
		t.Errorf("MatchedFields = %v", hit.MatchedFields)
	}
}

func TestEngine_SearchShortQuery(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Search(context.Background(), Query{Text: " a "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 0 || res.Message == "" {
		t.Errorf("expected empty results with message, got %+v", res)
	}
}

func TestEngine_SearchInvalidFilters(t *testing.T) {
	eng := newTestEngine(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, q := range []Query{
		{Text: "poverty", Type: "report"},
		{Text: "poverty", DateFrom: &from, DateTo: &to},
	} {
		if _, err := eng.Search(context.Background(), q); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Search(%+v) err = %v, want ErrInvalidRequest", q, err)
		}
	}
}

func TestEngine_IngestAndReindex(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	res, err := eng.Ingest(ctx, Upload{Name: "projects.csv", Data: []byte(projectsCSV)})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Count != 4 || len(res.Sample) != 3 {
		t.Errorf("Count = %d, len(Sample) = %d", res.Count, len(res.Sample))
	}
	if res.SourceID == "" || res.Template != "project" {
		t.Errorf("result = %+v", res)
	}

	clinics, err := eng.Search(ctx, Query{Text: "clinic", Type: "project"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(clinics.Results) != 2 {
		t.Errorf("expected 2 clinics, got %d", len(clinics.Results))
	}

	n, err := eng.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 6 {
		t.Errorf("Reindex = %d, want 6 (2 dataset rows + 4 replayed)", n)
	}
}

func TestEngine_DeleteSource(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	res, err := eng.Ingest(ctx, Upload{Name: "projects.csv", Data: []byte(projectsCSV)})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	sources, err := eng.Sources(ctx)
	if err != nil || len(sources) != 1 || sources[0].ID != res.SourceID {
		t.Fatalf("sources = %+v, err = %v", sources, err)
	}

	n, err := eng.DeleteSource(ctx, res.SourceID)
	if err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2 (dataset rows only)", n)
	}
	clinics, err := eng.Search(ctx, Query{Text: "clinic"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(clinics.Results) != 0 {
		t.Errorf("deleted upload still searchable: %d hits", len(clinics.Results))
	}
	if _, err := eng.DeleteSource(ctx, res.SourceID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestEngine_IngestFile(t *testing.T) {
	eng := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "hospitals.csv")
	if err := os.WriteFile(path, []byte("id,name\nh1,Butaro Hospital\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := eng.IngestFile(context.Background(), path, "project")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if res.Count != 1 || res.Sample[0].ID != "project-h1" {
		t.Errorf("result = %+v", res)
	}
	if res.Sample[0].Metadata["file"] != "hospitals.csv" {
		t.Errorf("metadata = %v", res.Sample[0].Metadata)
	}
}

func TestEngine_IngestErrors(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	if _, err := eng.Ingest(ctx, Upload{Name: "report.pdf", Data: []byte("%PDF")}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("pdf err = %v", err)
	}
	if _, err := eng.Ingest(ctx, Upload{Data: []byte(projectsCSV)}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("nameless err = %v", err)
	}
	if _, err := eng.IngestFile(ctx, filepath.Join(t.TempDir(), "missing.csv"), ""); !errors.Is(err, ErrSourceRead) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestEngine_Datasets(t *testing.T) {
	eng := newTestEngine(t)

	ov := eng.Datasets()
	if !ov.HasData || ov.Mode != "live" || ov.TotalRows != 2 {
		t.Errorf("overview = %+v", ov)
	}
}

func TestEngine_Catalog(t *testing.T) {
	ctx := context.Background()
	cat := newTestEngine(t).Catalog()

	entry, err := cat.Get(ctx, "rwa-nisr-lfs-2022")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Title != "Labour Force Survey 2022" {
		t.Errorf("Title = %q", entry.Title)
	}
	if _, err := cat.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing entry err = %v", err)
	}

	all, err := cat.Search(ctx, "")
	if err != nil || len(all) != 3 {
		t.Errorf("Search(\"\") = %d entries, err %v", len(all), err)
	}
	byYear, err := cat.ByYear(ctx, 2017)
	if err != nil || len(byYear) != 1 {
		t.Errorf("ByYear(2017) = %+v, err %v", byYear, err)
	}
	n, err := cat.Reload(ctx)
	if err != nil || n != 3 {
		t.Errorf("Reload = %d, err %v", n, err)
	}
}

func TestEngine_HealthBeforeAndAfterBuild(t *testing.T) {
	eng := newTestEngine(t, WithoutInitialBuild())

	h := eng.Health(context.Background())
	if h.Status != "error" || h.Checks["index"] != "pending" {
		t.Errorf("before build = %+v", h)
	}

	if _, err := eng.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	h = eng.Health(context.Background())
	if h.Status != "ok" || h.Documents != 2 || h.Checks["sources"] != "ok" {
		t.Errorf("after build = %+v", h)
	}
}

func TestEngine_PrometheusIndexSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	newTestEngine(t, WithPrometheus(reg))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "tabdex_sdk_index_documents" {
			if got := f.GetMetric()[0].GetGauge().GetValue(); got != 2 {
				t.Errorf("index_documents = %v, want 2", got)
			}
			return
		}
	}
	t.Error("tabdex_sdk_index_documents not found")
}

// --- Observer ---

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.indexSize(3)
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("search", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "tabdex_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("tabdex_sdk_operations_total not found")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("ingest", time.Now(), nil, "file", "projects.csv")
	obs.observe("ingest", time.Now(), errors.New("test error"))
}
