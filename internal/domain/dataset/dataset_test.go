package dataset

import "testing"

func TestNewOverview_Fallback(t *testing.T) {
	o := NewOverview([]Summary{{Kind: Poverty}, {Kind: Labor}, {Kind: GDP}, {Kind: Demographics}})
	if o.HasData {
		t.Error("HasData should be false with zero rows")
	}
	if o.Mode != ModeFallback {
		t.Errorf("Mode = %q, want %q", o.Mode, ModeFallback)
	}
}

func TestNewOverview_Live(t *testing.T) {
	o := NewOverview([]Summary{{Kind: Poverty, Rows: 3}, {Kind: Labor}})
	if !o.HasData || o.Mode != ModeLive || o.TotalRows != 3 {
		t.Errorf("overview = %+v", o)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("gdp"); err != nil || k != GDP {
		t.Errorf("ParseKind(gdp) = %q, %v", k, err)
	}
	if _, err := ParseKind("trade"); err == nil {
		t.Error("expected error for unknown dataset")
	}
}

func TestSummary_Regions(t *testing.T) {
	s := Summary{ByRegion: map[string]float64{"West": 1, "East": 2, "Kigali": 3}}
	got := s.Regions()
	want := []string{"East", "Kigali", "West"}
	if len(got) != len(want) {
		t.Fatalf("Regions() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Regions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if got := (Summary{}).Regions(); len(got) != 0 {
		t.Errorf("empty summary regions = %v", got)
	}
}
