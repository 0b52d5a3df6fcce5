package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/domain/dataset"
	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/metrics"
	"github.com/kailas-cloud/tabdex/internal/ontology"
)

// DefaultWorkers is the loader pool size when none is configured.
const DefaultWorkers = 4

var metricFields = map[dataset.Kind]string{
	dataset.Poverty:      ontology.FieldPoverty,
	dataset.Labor:        ontology.FieldUnemployment,
	dataset.GDP:          ontology.FieldGDP,
	dataset.Demographics: ontology.FieldPopulation,
}

// Config locates the dataset files.
type Config struct {
	Dir string
	// Files overrides the file name per dataset. The default is "<kind>.csv".
	Files   map[dataset.Kind]string
	Workers int
}

// Loaded is the output of one dataset loader.
type Loaded struct {
	Summary   dataset.Summary
	Documents []document.Document
}

// Result is the output of LoadAll.
type Result struct {
	Overview  dataset.Overview
	Documents []document.Document
}

// Service runs the dataset loaders and keeps the latest overview.
type Service struct {
	cfg    Config
	reader TableReader
	norm   Normalizer
	conv   Converter
	logger *zap.Logger

	mu       sync.RWMutex
	overview dataset.Overview
}

// New creates a dataset service.
func New(cfg Config, reader TableReader, norm Normalizer, conv Converter, logger *zap.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		reader:   reader,
		norm:     norm,
		conv:     conv,
		logger:   logger,
		overview: dataset.NewOverview(nil),
	}
}

// Path returns the file path for a dataset.
func (s *Service) Path(kind dataset.Kind) string {
	name := s.cfg.Files[kind]
	if name == "" {
		name = string(kind) + ".csv"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.cfg.Dir, name)
}

// Load reads, normalizes and converts one dataset and summarizes its metric.
func (s *Service) Load(ctx context.Context, kind dataset.Kind) (Loaded, error) {
	if err := ctx.Err(); err != nil {
		return Loaded{}, fmt.Errorf("load %s: %w", kind, err)
	}
	path := s.Path(kind)
	tbl, err := s.reader.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("load %s: %w", kind, err)
	}

	recs := s.norm.NormalizeRows(tbl.Headers, tbl.Rows)
	docs := s.conv.ConvertAll(recs, string(kind))

	metrics.IngestRowsTotal.WithLabelValues(string(kind), "indexed").Add(float64(len(docs)))
	if skipped := tbl.Len() - len(recs); skipped > 0 {
		metrics.IngestRowsTotal.WithLabelValues(string(kind), "skipped").Add(float64(skipped))
	}
	if tbl.Malformed > 0 {
		metrics.IngestRowsTotal.WithLabelValues(string(kind), "malformed").Add(float64(tbl.Malformed))
		s.logger.Warn("malformed lines kept as loose rows",
			zap.String("dataset", string(kind)),
			zap.Int("lines", tbl.Malformed),
		)
	}

	sum := Summarize(kind, recs)
	sum.File = filepath.Base(path)
	return Loaded{Summary: sum, Documents: docs}, nil
}

// LoadAll runs every loader on a worker pool. Loaders that fail are reported in
// the joined error and count as empty in the overview.
func (s *Service) LoadAll(ctx context.Context) (Result, error) {
	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return Result{}, fmt.Errorf("create loader pool: %w", err)
	}
	defer pool.Release()

	loaded := make([]Loaded, len(dataset.Kinds))
	errs := make([]error, len(dataset.Kinds))
	var wg sync.WaitGroup
	for i, kind := range dataset.Kinds {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			loaded[i], errs[i] = s.Load(ctx, kind)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit %s: %w", kind, submitErr)
		}
	}
	wg.Wait()

	var res Result
	summaries := make([]dataset.Summary, len(dataset.Kinds))
	for i, kind := range dataset.Kinds {
		if errs[i] != nil {
			s.logger.Error("dataset load failed", zap.String("dataset", string(kind)), zap.Error(errs[i]))
			summaries[i] = dataset.Summary{Kind: kind, File: filepath.Base(s.Path(kind)), Metric: metricFields[kind]}
			continue
		}
		summaries[i] = loaded[i].Summary
		res.Documents = append(res.Documents, loaded[i].Documents...)
	}
	res.Overview = dataset.NewOverview(summaries)

	s.mu.Lock()
	s.overview = res.Overview
	s.mu.Unlock()

	s.logger.Info("datasets loaded",
		zap.Int("rows", res.Overview.TotalRows),
		zap.String("mode", string(res.Overview.Mode)),
	)
	return res, errors.Join(errs...)
}

// Overview returns the overview from the most recent LoadAll.
func (s *Service) Overview() dataset.Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overview
}

// Summarize aggregates the dataset metric: national average, per-region
// average and the most recent year.
func Summarize(kind dataset.Kind, recs []record.Record) dataset.Summary {
	sum := dataset.Summary{Kind: kind, Rows: len(recs), Metric: metricFields[kind]}

	type acc struct {
		total float64
		n     int
	}
	var national acc
	regions := make(map[string]*acc)

	for _, rec := range recs {
		y := leadingYear(rec.Value(ontology.FieldYear))
		if y == 0 {
			y = leadingYear(rec.Value(ontology.FieldDate))
		}
		sum.LatestYear = max(sum.LatestYear, y)

		v, ok := metricValue(kind, rec)
		if !ok {
			continue
		}
		national.total += v
		national.n++
		if region, ok := rec.Get(ontology.FieldRegion); ok {
			a := regions[region]
			if a == nil {
				a = &acc{}
				regions[region] = a
			}
			a.total += v
			a.n++
		}
	}

	if national.n > 0 {
		avg := national.total / float64(national.n)
		sum.NationalAverage = &avg
	}
	if len(regions) > 0 {
		sum.ByRegion = make(map[string]float64, len(regions))
		for r, a := range regions {
			sum.ByRegion[r] = a.total / float64(a.n)
		}
	}
	return sum
}

// metricValue reads the dataset metric, falling back to the generic value
// column, and for demographics to male + female.
func metricValue(kind dataset.Kind, rec record.Record) (float64, bool) {
	if v, ok := ParseNumber(rec.Value(metricFields[kind])); ok {
		return v, true
	}
	if kind == dataset.Demographics {
		m, okM := ParseNumber(rec.Value(ontology.FieldMale))
		f, okF := ParseNumber(rec.Value(ontology.FieldFemale))
		if okM || okF {
			return m + f, true
		}
	}
	return ParseNumber(rec.Value(ontology.FieldValue))
}

// ParseNumber parses a numeric cell, tolerating thousands separators and a
// trailing percent sign.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func leadingYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y < 1000 {
		return 0
	}
	return y
}
