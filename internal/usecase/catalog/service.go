package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/domain"
	domcat "github.com/kailas-cloud/tabdex/internal/domain/catalog"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/ontology"
)

// Service serves dataset discovery over a catalog file loaded once and cached.
type Service struct {
	path   string
	reader TableReader
	norm   Normalizer
	logger *zap.Logger

	mu      sync.Mutex
	loaded  bool
	entries []domcat.Entry
	byID    map[string]int
}

// New creates a catalog service. Nothing is read until the first lookup.
func New(path string, reader TableReader, norm Normalizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{path: path, reader: reader, norm: norm, logger: logger}
}

// List returns every entry in file order.
func (s *Service) List(ctx context.Context) ([]domcat.Entry, error) {
	entries, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return clone(entries), nil
}

// Get returns the entry with the given survey id (case-insensitive).
func (s *Service) Get(ctx context.Context, surveyID string) (domcat.Entry, error) {
	entries, byID, err := s.snapshot(ctx)
	if err != nil {
		return domcat.Entry{}, err
	}
	i, ok := byID[strings.ToLower(strings.TrimSpace(surveyID))]
	if !ok {
		return domcat.Entry{}, fmt.Errorf("catalog entry %q: %w", surveyID, domain.ErrNotFound)
	}
	return entries[i], nil
}

// Search returns entries whose title, survey id or collection years contain
// keyword. An empty keyword returns every entry.
func (s *Service) Search(ctx context.Context, keyword string) ([]domcat.Entry, error) {
	entries, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(keyword) == "" {
		return clone(entries), nil
	}
	out := make([]domcat.Entry, 0)
	for i := range entries {
		if entries[i].Matches(keyword) {
			out = append(out, entries[i])
		}
	}
	return out, nil
}

// ByYear returns entries whose collection window contains year.
func (s *Service) ByYear(ctx context.Context, year int) ([]domcat.Entry, error) {
	entries, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domcat.Entry, 0)
	for i := range entries {
		if entries[i].Covers(year) {
			out = append(out, entries[i])
		}
	}
	return out, nil
}

// Reload re-reads the catalog file and returns the entry count.
func (s *Service) Reload(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return 0, err
	}
	return len(s.entries), nil
}

func (s *Service) snapshot(ctx context.Context) ([]domcat.Entry, map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.load(ctx); err != nil {
			return nil, nil, err
		}
	}
	return s.entries, s.byID, nil
}

// load must be called with mu held. The cache is replaced only on success.
func (s *Service) load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	tbl, err := s.reader.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	recs := s.norm.NormalizeRows(tbl.Headers, tbl.Rows)
	entries := make([]domcat.Entry, 0, len(recs))
	byID := make(map[string]int, len(recs))
	for _, rec := range recs {
		e := toEntry(rec)
		key := strings.ToLower(e.SurveyID)
		if key != "" {
			if _, dup := byID[key]; dup {
				continue
			}
			byID[key] = len(entries)
		}
		entries = append(entries, e)
	}

	s.entries = entries
	s.byID = byID
	s.loaded = true
	s.logger.Info("catalog loaded", zap.String("path", s.path), zap.Int("entries", len(entries)))
	return nil
}

func toEntry(rec record.Record) domcat.Entry {
	return domcat.Entry{
		SurveyID:        rec.Value(ontology.CatalogSurveyID),
		Title:           rec.Value(ontology.CatalogTitle),
		Nation:          rec.Value(ontology.CatalogNation),
		Authority:       rec.Value(ontology.CatalogAuthority),
		CollectionStart: rec.Value(ontology.CatalogCollectionStart),
		CollectionEnd:   rec.Value(ontology.CatalogCollectionEnd),
		Created:         rec.Value(ontology.CatalogCreated),
		Changed:         rec.Value(ontology.CatalogChanged),
	}
}

func clone(entries []domcat.Entry) []domcat.Entry {
	out := make([]domcat.Entry, len(entries))
	copy(out, entries)
	return out
}
