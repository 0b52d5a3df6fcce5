package tabdex

import (
	"context"
	"fmt"
	"time"
)

// CatalogService provides dataset discovery over the catalog file.
type CatalogService struct {
	svc catalogUseCase
	obs *observer
}

// List returns every catalog entry in file order.
func (s *CatalogService) List(ctx context.Context) (entries []CatalogEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.list", start, err) }()

	entries, err = s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given survey id. The lookup is
// case-insensitive; a missing entry yields ErrNotFound.
func (s *CatalogService) Get(ctx context.Context, surveyID string) (entry CatalogEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.get", start, err, "survey_id", surveyID) }()

	entry, err = s.svc.Get(ctx, surveyID)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("get catalog entry %s: %w", surveyID, err)
	}
	return entry, nil
}

// Search returns entries whose title, survey id or collection years contain
// keyword. An empty keyword returns every entry.
func (s *CatalogService) Search(ctx context.Context, keyword string) (entries []CatalogEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.search", start, err, "results", len(entries)) }()

	entries, err = s.svc.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return entries, nil
}

// ByYear returns entries whose collection window covers year.
func (s *CatalogService) ByYear(ctx context.Context, year int) (entries []CatalogEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.by_year", start, err, "results", len(entries)) }()

	entries, err = s.svc.ByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("catalog by year %d: %w", year, err)
	}
	return entries, nil
}

// Reload re-reads the catalog file and returns the entry count.
func (s *CatalogService) Reload(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("catalog.reload", start, err, "entries", n) }()

	n, err = s.svc.Reload(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload catalog: %w", err)
	}
	return n, nil
}
