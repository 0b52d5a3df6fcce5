package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/convert"
	"github.com/kailas-cloud/tabdex/internal/domain"
	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
	"github.com/kailas-cloud/tabdex/internal/index"
	"github.com/kailas-cloud/tabdex/internal/logger"
	"github.com/kailas-cloud/tabdex/internal/metrics"
	"github.com/kailas-cloud/tabdex/internal/tabular"
)

// SampleSize caps the documents echoed back from an upload.
const SampleSize = 3

const extJSON = ".json"

// Upload is one file submitted for ingestion.
type Upload struct {
	Name string
	Data []byte
	// Template names the converter template. Empty infers it from Name.
	Template string
	// Fixed disables header auto-detection in favour of SkipRows/HeaderRow.
	Fixed     bool
	SkipRows  int
	HeaderRow int
}

// Result describes an accepted upload.
type Result struct {
	Count  int
	Sample []document.Document
	Source domsrc.Upload
}

// Service ingests uploads into the live index and rebuilds it on demand.
type Service struct {
	idx      Index
	norm     Normalizer
	conv     Converter
	datasets Datasets
	sources  SourceRegistry
	indexCfg index.Config
	logger   *zap.Logger
	now      func() time.Time

	// mu serializes writers so an upload never lands in a store that a
	// concurrent re-index is about to replace.
	mu    sync.Mutex
	built atomic.Bool
}

// New creates an ingest service. sources may be nil, in which case uploads
// are not replayed on re-index.
func New(
	idx Index, norm Normalizer, conv Converter, datasets Datasets, sources SourceRegistry,
	indexCfg index.Config, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		idx:      idx,
		norm:     norm,
		conv:     conv,
		datasets: datasets,
		sources:  sources,
		indexCfg: indexCfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Ready reports whether the index has been built at least once.
func (s *Service) Ready() bool { return s.built.Load() }

// Len returns the live document count.
func (s *Service) Len() int { return s.idx.Current().Len() }

// Supported reports whether name has an ingestible extension.
func Supported(name string) bool {
	return tabular.Supported(name) || tabular.Ext(name) == extJSON
}

// Ingest parses, converts and indexes an upload. Documents are fully built
// before the index is touched; on error the index is unchanged.
func (s *Service) Ingest(ctx context.Context, up Upload) (Result, error) {
	name := filepath.Base(strings.TrimSpace(up.Name))
	if name == "" || name == "." {
		return Result{}, domain.NewFieldError("file", "file name is required")
	}
	if !Supported(name) {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, tabular.Ext(name))
	}
	if up.SkipRows < 0 || up.HeaderRow < 0 {
		return Result{}, domain.NewFieldError("skip_rows", "header offsets must be non-negative")
	}

	template := up.Template
	if template == "" {
		template = convert.InferTemplate(name)
	}

	docs, err := s.build(name, up.Data, template, readOptions(up.Fixed, up.SkipRows, up.HeaderRow))
	if err != nil {
		return Result{}, err
	}

	src := domsrc.Upload{
		ID:          strings.ToLower(ulid.Make().String()),
		Name:        name,
		Template:    template,
		Format:      strings.TrimPrefix(tabular.Ext(name), "."),
		Size:        int64(len(up.Data)),
		Count:       len(docs),
		Created:     s.now().UTC(),
		FixedHeader: up.Fixed,
		SkipRows:    up.SkipRows,
		HeaderRow:   up.HeaderRow,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sources != nil {
		if src, err = s.sources.Save(ctx, src, up.Data); err != nil {
			return Result{}, fmt.Errorf("register upload %s: %w", name, err)
		}
	}

	store := s.idx.Current()
	store.Add(docs...)
	metrics.IndexDocuments.Set(float64(store.Len()))

	logger.FromContext(ctx).Info("upload ingested",
		zap.String("file", name),
		zap.String("template", template),
		zap.Int("documents", len(docs)),
	)

	sample := docs
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}
	return Result{Count: len(docs), Sample: sample, Source: src}, nil
}

// Reindex rebuilds the index from the datasets and every registered upload
// into a fresh store and swaps it in. It returns the new document count.
// Dataset loader failures are logged and count as empty; a failure to list
// uploads aborts the rebuild and leaves the live index untouched.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild(ctx)
}

// Sources lists the registered uploads in replay order.
func (s *Service) Sources(ctx context.Context) ([]domsrc.Upload, error) {
	if s.sources == nil {
		return []domsrc.Upload{}, nil
	}
	uploads, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

// DeleteSource removes an upload from the registry and rebuilds the index
// without its documents. It returns the new document count.
func (s *Service) DeleteSource(ctx context.Context, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, domain.NewFieldError("id", "source id is required")
	}
	if s.sources == nil {
		return 0, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sources.Data(ctx, id); err != nil {
		return 0, err
	}
	if err := s.sources.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("unregister upload %s: %w", id, err)
	}
	logger.FromContext(ctx).Info("upload removed", zap.String("id", id))
	return s.rebuild(ctx)
}

// rebuild fills a fresh store and swaps it in. Callers hold mu.
func (s *Service) rebuild(ctx context.Context) (int, error) {
	start := time.Now()
	next := index.NewStore(s.indexCfg)

	if s.datasets != nil {
		res, err := s.datasets.LoadAll(ctx)
		if err != nil {
			s.logger.Warn("some datasets failed to load", zap.Error(err))
		}
		next.Add(res.Documents...)
	}

	if s.sources != nil {
		if err := s.replay(ctx, next); err != nil {
			return 0, err
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}

	s.idx.Swap(next)
	s.built.Store(true)
	n := next.Len()
	elapsed := time.Since(start)
	metrics.IndexDocuments.Set(float64(n))
	metrics.ReindexDuration.Observe(elapsed.Seconds())
	s.logger.Info("index rebuilt",
		zap.Int("documents", n),
		zap.Int("postings", next.Keys()),
		zap.Duration("duration", elapsed),
	)
	return n, nil
}

func (s *Service) replay(ctx context.Context, next *index.Store) error {
	uploads, err := s.sources.List(ctx)
	if err != nil {
		return fmt.Errorf("list uploads: %w", err)
	}
	for _, u := range uploads {
		data, err := s.sources.Data(ctx, u.ID)
		if err != nil {
			s.logger.Warn("upload content missing", zap.String("id", u.ID), zap.Error(err))
			continue
		}
		opts := readOptions(u.FixedHeader, u.SkipRows, u.HeaderRow)
		docs, err := s.build(u.Name, data, u.Template, opts)
		if err != nil {
			s.logger.Warn("upload replay failed", zap.String("id", u.ID), zap.Error(err))
			continue
		}
		next.Add(docs...)
	}
	return nil
}

func readOptions(fixed bool, skipRows, headerRow int) tabular.Options {
	opts := tabular.Options{SkipRows: skipRows, HeaderRow: headerRow}
	if fixed {
		opts.Mode = tabular.ModeFixed
	}
	return opts
}

// build turns file content into documents without side effects on the index.
func (s *Service) build(name string, data []byte, template string, opts tabular.Options) ([]document.Document, error) {
	recs, err := s.records(name, data, opts)
	if err != nil {
		return nil, err
	}
	return s.conv.ConvertFile(recs, template, name), nil
}

func (s *Service) records(name string, data []byte, opts tabular.Options) ([]record.Record, error) {
	if tabular.Ext(name) == extJSON {
		objs, err := decodeObjects(data)
		if err != nil {
			return nil, err
		}
		recs := s.norm.NormalizeMaps(objs)
		metrics.IngestRowsTotal.WithLabelValues("upload", "indexed").Add(float64(len(recs)))
		if skipped := len(objs) - len(recs); skipped > 0 {
			metrics.IngestRowsTotal.WithLabelValues("upload", "skipped").Add(float64(skipped))
		}
		return recs, nil
	}

	tbl, err := tabular.Read(name, data, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	recs := s.norm.NormalizeRows(tbl.Headers, tbl.Rows)
	metrics.IngestRowsTotal.WithLabelValues("upload", "indexed").Add(float64(len(recs)))
	if skipped := tbl.Len() - len(recs); skipped > 0 {
		metrics.IngestRowsTotal.WithLabelValues("upload", "skipped").Add(float64(skipped))
	}
	if tbl.Malformed > 0 {
		metrics.IngestRowsTotal.WithLabelValues("upload", "malformed").Add(float64(tbl.Malformed))
		s.logger.Warn("malformed lines kept as loose rows", zap.String("file", name), zap.Int("lines", tbl.Malformed))
	}
	return recs, nil
}
