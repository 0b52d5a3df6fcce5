package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/tabdex/internal/convert"
	domds "github.com/kailas-cloud/tabdex/internal/domain/dataset"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/ontology"
	"github.com/kailas-cloud/tabdex/internal/tabular"
)

// --- Mocks ---

type mockReader struct {
	tables map[string]*tabular.Table
	errs   map[string]error
}

func (m *mockReader) ReadFile(path string) (*tabular.Table, error) {
	base := filepath.Base(path)
	if err := m.errs[base]; err != nil {
		return nil, err
	}
	if t, ok := m.tables[base]; ok {
		return t, nil
	}
	return &tabular.Table{}, nil
}

// --- Helpers ---

func newService(t *testing.T, cfg Config, reader TableReader) *Service {
	t.Helper()
	conv, err := convert.New()
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, reader, ontology.Default(), conv, nil)
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// --- Tests ---

func TestLoadAll_FromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "poverty.csv", "EICV poverty,,\nDistrict,Poverty rate,Year\nNyamagabe,51.9,2017\nGasabo,10.5,2024\n")
	writeFile(t, dir, "demographics.csv", "Population by sex,,\nDistrict,Male,Female\nNyarugenge,47.7,52.3\nGasabo,49.1,50.9\n")

	svc := newService(t, Config{Dir: dir, Workers: 2}, tabular.FileReader{})
	res, err := svc.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ov := res.Overview
	if !ov.HasData || ov.Mode != domds.ModeLive {
		t.Fatalf("expected live overview, got %+v", ov)
	}
	if ov.TotalRows != 4 || len(res.Documents) != 4 {
		t.Errorf("rows = %d, docs = %d", ov.TotalRows, len(res.Documents))
	}
	if len(ov.Summaries) != len(domds.Kinds) {
		t.Fatalf("expected %d summaries", len(domds.Kinds))
	}

	pov := ov.Summaries[0]
	if pov.Kind != domds.Poverty || pov.Rows != 2 || pov.LatestYear != 2024 {
		t.Errorf("poverty summary = %+v", pov)
	}
	if pov.NationalAverage == nil || !approx(*pov.NationalAverage, 31.2) {
		t.Errorf("poverty average = %v", pov.NationalAverage)
	}

	demo := ov.Summaries[3]
	if !approx(demo.ByRegion["Nyarugenge"], 100) {
		t.Errorf("demographics male+female fallback = %v", demo.ByRegion)
	}
	if got := svc.Overview(); got.TotalRows != 4 {
		t.Errorf("cached overview rows = %d", got.TotalRows)
	}
}

func TestLoadAll_NoDataFallsBack(t *testing.T) {
	svc := newService(t, Config{Dir: t.TempDir()}, tabular.FileReader{})

	if ov := svc.Overview(); ov.HasData || ov.Mode != domds.ModeFallback {
		t.Errorf("initial overview = %+v", ov)
	}

	res, err := svc.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("missing files must not fail: %v", err)
	}
	if res.Overview.HasData {
		t.Error("hasData must be false with zero rows")
	}
	if res.Overview.Mode != domds.ModeFallback {
		t.Errorf("mode = %q, want fallback", res.Overview.Mode)
	}
	if len(res.Documents) != 0 {
		t.Errorf("expected no documents, got %d", len(res.Documents))
	}
}

func TestLoadAll_PartialFailure(t *testing.T) {
	reader := &mockReader{
		tables: map[string]*tabular.Table{
			"gdp.csv": {
				Headers: []string{"Year", "GDP"},
				Rows:    []record.RawRow{{"2022", "13,716"}},
			},
		},
		errs: map[string]error{"labor.csv": errors.New("disk error")},
	}
	svc := newService(t, Config{}, reader)

	res, err := svc.LoadAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk error") {
		t.Fatalf("expected joined loader error, got %v", err)
	}
	if res.Overview.TotalRows != 1 || !res.Overview.HasData {
		t.Errorf("overview = %+v", res.Overview)
	}
	gdp := res.Overview.Summaries[2]
	if gdp.NationalAverage == nil || *gdp.NationalAverage != 13716 {
		t.Errorf("gdp average = %v", gdp.NationalAverage)
	}
}

func TestLoad_RepeatedCodesKeepEveryRow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "poverty.csv", "Code,District,Year,Poverty rate\n11,Nyarugenge,2014,12.1\n11,Nyarugenge,2017,10.4\n")

	svc := newService(t, Config{Dir: dir}, tabular.FileReader{})
	loaded, err := svc.Load(context.Background(), domds.Poverty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Documents) != 2 {
		t.Fatalf("docs = %d, want 2", len(loaded.Documents))
	}
	if loaded.Documents[0].ID() == loaded.Documents[1].ID() {
		t.Errorf("rows share id %s", loaded.Documents[0].ID())
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	svc := newService(t, Config{}, &mockReader{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Load(ctx, domds.GDP); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPath(t *testing.T) {
	svc := newService(t, Config{
		Dir:   "/data",
		Files: map[domds.Kind]string{domds.Labor: "lfs_2023.xlsx", domds.GDP: "/abs/gdp.parquet"},
	}, &mockReader{})

	tests := map[domds.Kind]string{
		domds.Poverty: "/data/poverty.csv",
		domds.Labor:   "/data/lfs_2023.xlsx",
		domds.GDP:     "/abs/gdp.parquet",
	}
	for kind, want := range tests {
		if got := svc.Path(kind); got != want {
			t.Errorf("Path(%s) = %q, want %q", kind, got, want)
		}
	}
}

func TestSummarize_ValueFallbackAndUnparsable(t *testing.T) {
	recs := []record.Record{
		{ontology.FieldValue: "12%", ontology.FieldRegion: "East", ontology.FieldDate: "2021-06-01"},
		{ontology.FieldUnemployment: "n/a", ontology.FieldRegion: "East"},
		{ontology.FieldUnemployment: "18", ontology.FieldRegion: "West"},
	}
	sum := Summarize(domds.Labor, recs)

	if sum.Rows != 3 || sum.LatestYear != 2021 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.NationalAverage == nil || *sum.NationalAverage != 15 {
		t.Errorf("average = %v", sum.NationalAverage)
	}
	if got := sum.Regions(); strings.Join(got, ",") != "East,West" {
		t.Errorf("regions = %v", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"47.7", 47.7, true},
		{" 1,234 ", 1234, true},
		{"51.9%", 51.9, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v", tt.in, got, ok)
		}
	}
}
