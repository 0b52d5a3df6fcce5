package dataset

import (
	"fmt"
	"sort"
)

// Kind names one of the known statistical datasets.
type Kind string

const (
	// Poverty is the poverty incidence dataset.
	Poverty Kind = "poverty"
	// Labor is the labour force dataset.
	Labor Kind = "labor"
	// GDP is the national accounts dataset.
	GDP Kind = "gdp"
	// Demographics is the population dataset.
	Demographics Kind = "demographics"
)

// Kinds lists the known datasets in load order.
var Kinds = []Kind{Poverty, Labor, GDP, Demographics}

// ParseKind validates a dataset name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q", s)
}

// Mode tells dashboard consumers whether real data backs the overview.
type Mode string

const (
	// ModeLive means at least one dataset produced rows.
	ModeLive Mode = "live"
	// ModeFallback means no dataset produced rows; consumers show demonstration content.
	ModeFallback Mode = "fallback"
)

// Summary is the aggregate computed by one dataset loader.
type Summary struct {
	Kind            Kind               `json:"kind"`
	File            string             `json:"file"`
	Rows            int                `json:"rows"`
	Metric          string             `json:"metric"`
	NationalAverage *float64           `json:"nationalAverage,omitempty"`
	ByRegion        map[string]float64 `json:"byRegion,omitempty"`
	LatestYear      int                `json:"latestYear,omitempty"`
}

// Regions returns the region names of ByRegion, sorted.
func (s Summary) Regions() []string {
	out := make([]string, 0, len(s.ByRegion))
	for r := range s.ByRegion {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Overview aggregates all loader summaries.
type Overview struct {
	HasData   bool      `json:"hasData"`
	Mode      Mode      `json:"mode"`
	TotalRows int       `json:"totalRows"`
	Summaries []Summary `json:"summaries"`
}

// NewOverview derives the hasData flag and mode from the summaries.
func NewOverview(summaries []Summary) Overview {
	total := 0
	for _, s := range summaries {
		total += s.Rows
	}
	mode := ModeFallback
	if total > 0 {
		mode = ModeLive
	}
	return Overview{HasData: total > 0, Mode: mode, TotalRows: total, Summaries: summaries}
}
