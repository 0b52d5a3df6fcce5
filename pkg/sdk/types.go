package tabdex

import (
	"time"

	"github.com/kailas-cloud/tabdex/internal/domain/catalog"
	"github.com/kailas-cloud/tabdex/internal/domain/dataset"
)

// Source is the display-only provenance of a document.
type Source struct {
	Name        string
	Reliability string
	LastUpdated time.Time
}

// Document is a searchable unit in the index.
type Document struct {
	ID        string
	Type      string // PROJECT, OPPORTUNITY, POLICY, INSIGHT, MINISTRY or DATA
	Title     string
	Content   string
	Keywords  string
	Source    Source
	Metadata  map[string]string
	CreatedAt time.Time
}

// Query is a federated search request. Empty filter fields are ignored.
// The date range applies only when both bounds are set.
type Query struct {
	Text     string
	Type     string
	Sector   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// Result is a single search hit.
type Result struct {
	Document      Document
	Score         float64
	MatchedFields []string
}

// SearchResponse holds the hits of one query.
type SearchResponse struct {
	Results []Result
	// Message explains an empty answer given without searching.
	Message string
}

// Upload is one file handed to Ingest.
type Upload struct {
	Name string
	Data []byte
	// Template names the converter template; empty infers it from Name.
	Template string
	// FixedHeader disables header detection in favour of SkipRows and HeaderRow.
	FixedHeader bool
	SkipRows    int
	HeaderRow   int
}

// IngestResult describes an accepted upload.
type IngestResult struct {
	SourceID string
	Template string
	Count    int
	Sample   []Document
}

// SourceInfo describes a registered upload.
type SourceInfo struct {
	ID        string
	Name      string
	Template  string
	Format    string
	Size      int64
	Count     int
	CreatedAt time.Time
}

// Overview aggregates the dataset loader summaries.
type Overview = dataset.Overview

// DatasetSummary is the aggregate computed by one dataset loader.
type DatasetSummary = dataset.Summary

// CatalogEntry describes a dataset in the catalog.
type CatalogEntry = catalog.Entry

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status    string            // "ok", "degraded", "error"
	Checks    map[string]string // component → "ok"/"error"/"pending"
	Documents int
}
