package tabdex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/tabdex/internal/convert"
	"github.com/kailas-cloud/tabdex/internal/db"
	"github.com/kailas-cloud/tabdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/tabdex/internal/db/redis"
	"github.com/kailas-cloud/tabdex/internal/domain"
	domcat "github.com/kailas-cloud/tabdex/internal/domain/catalog"
	"github.com/kailas-cloud/tabdex/internal/domain/dataset"
	"github.com/kailas-cloud/tabdex/internal/domain/search/request"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
	"github.com/kailas-cloud/tabdex/internal/index"
	"github.com/kailas-cloud/tabdex/internal/ontology"
	srcrepo "github.com/kailas-cloud/tabdex/internal/repository/source"
	"github.com/kailas-cloud/tabdex/internal/tabular"
	cataloguc "github.com/kailas-cloud/tabdex/internal/usecase/catalog"
	datasetuc "github.com/kailas-cloud/tabdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/tabdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tabdex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tabdex/internal/usecase/search"
)

const (
	driverMemory = "memory"
	driverRedis  = "redis"

	defaultDataDir          = "data"
	defaultCatalogFile      = "catalog.csv"
	defaultReadinessTimeout = 10 * time.Second
)

// Internal interfaces swapped for mocks in tests.
type ingestUseCase interface {
	Ingest(ctx context.Context, up ingestuc.Upload) (ingestuc.Result, error)
	Reindex(ctx context.Context) (int, error)
	Sources(ctx context.Context) ([]domsrc.Upload, error)
	DeleteSource(ctx context.Context, id string) (int, error)
	Len() int
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

type datasetUseCase interface {
	Overview() dataset.Overview
}

type catalogUseCase interface {
	List(ctx context.Context) ([]domcat.Entry, error)
	Get(ctx context.Context, surveyID string) (domcat.Entry, error)
	Search(ctx context.Context, keyword string) ([]domcat.Entry, error)
	ByYear(ctx context.Context, year int) ([]domcat.Entry, error)
	Reload(ctx context.Context) (int, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Engine is the in-process tabdex search engine.
type Engine struct {
	store      db.Store
	ingestSvc  ingestUseCase
	searchSvc  searchUseCase
	datasetSvc datasetUseCase
	catalogSvc catalogUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates an Engine and builds the initial index from the data
// directory and any uploads already in the registry.
// The provided context bounds the registry readiness check and the first build.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		dataDir:     defaultDataDir,
		catalogFile: defaultCatalogFile,
		driver:      driverMemory,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	files, err := datasetFiles(cfg.files)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("tabdex: source registry not ready: %w", err)
	}

	e, err := wireEngine(store, cfg, files, obs)
	if err != nil {
		store.Close()
		return nil, err
	}

	if !cfg.skipBuild {
		if _, err := e.Reindex(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("tabdex: initial build: %w", err)
		}
	}
	return e, nil
}

func datasetFiles(raw map[string]string) (map[dataset.Kind]string, error) {
	files := make(map[dataset.Kind]string, len(raw))
	for name, file := range raw {
		kind, err := dataset.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("tabdex: %w", err)
		}
		files[kind] = file
	}
	return files, nil
}

func createStore(cfg *engineConfig) (db.Store, error) {
	switch cfg.driver {
	case driverMemory:
		return memory.NewStore(), nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("tabdex: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("tabdex: unknown driver %q", cfg.driver)
	}
}

func wireEngine(store db.Store, cfg *engineConfig, files map[dataset.Kind]string, obs *observer) (*Engine, error) {
	conv, err := convert.New(convert.WithClock(cfg.clock))
	if err != nil {
		return nil, fmt.Errorf("tabdex: converter: %w", err)
	}
	norm := ontology.Default()
	live := index.NewLive(nil)

	datasetSvc := datasetuc.New(datasetuc.Config{
		Dir:     cfg.dataDir,
		Files:   files,
		Workers: cfg.loadWorkers,
	}, tabular.FileReader{}, norm, conv, nil)

	ingestSvc := ingestuc.New(live, norm, conv, datasetSvc, srcrepo.New(store), index.Config{
		MaxTokenRunes: cfg.maxTokenRunes,
		ContextDepth:  cfg.contextDepth,
	}, nil)

	catalogSvc := cataloguc.New(filepath.Join(cfg.dataDir, cfg.catalogFile), tabular.FileReader{},
		ontology.MustNew(ontology.CatalogVocabulary), nil)

	return &Engine{
		store:      store,
		ingestSvc:  ingestSvc,
		searchSvc:  searchuc.New(live, cfg.rankByScore),
		datasetSvc: datasetSvc,
		catalogSvc: catalogSvc,
		healthSvc:  healthuc.New(ingestSvc, store),
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// Reindex rebuilds the index from the datasets and every registered upload
// and returns the new document count. The old index keeps serving until the
// rebuild completes.
func (e *Engine) Reindex(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { e.obs.observe("reindex", start, err, "documents", n) }()

	n, err = e.ingestSvc.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	e.obs.indexSize(n)
	return n, nil
}

// Ingest parses, converts and indexes one upload.
// On error the index is unchanged.
func (e *Engine) Ingest(ctx context.Context, up Upload) (res IngestResult, err error) {
	start := time.Now()
	defer func() { e.obs.observe("ingest", start, err, "file", up.Name, "documents", res.Count) }()

	r, err := e.ingestSvc.Ingest(ctx, toUpload(up))
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: %w", up.Name, err)
	}
	e.obs.indexSize(e.ingestSvc.Len())
	return fromIngestResult(r), nil
}

// IngestFile reads path and ingests it. template may be empty.
func (e *Engine) IngestFile(ctx context.Context, path, template string) (IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read %s: %w: %w", path, domain.ErrSourceRead, err)
	}
	return e.Ingest(ctx, Upload{Name: filepath.Base(path), Data: data, Template: template})
}

// Sources lists the registered uploads in replay order.
func (e *Engine) Sources(ctx context.Context) (out []SourceInfo, err error) {
	start := time.Now()
	defer func() { e.obs.observe("sources.list", start, err, "sources", len(out)) }()

	uploads, err := e.ingestSvc.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return fromUploads(uploads), nil
}

// DeleteSource unregisters an upload and rebuilds the index without it.
// It returns the new document count; an unknown id yields ErrNotFound.
func (e *Engine) DeleteSource(ctx context.Context, id string) (n int, err error) {
	start := time.Now()
	defer func() { e.obs.observe("sources.delete", start, err, "id", id, "documents", n) }()

	n, err = e.ingestSvc.DeleteSource(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", id, err)
	}
	e.obs.indexSize(n)
	return n, nil
}

// Search runs a federated query over the title, content and keywords fields.
// A query under two characters yields no results and a Message.
func (e *Engine) Search(ctx context.Context, q Query) (res SearchResponse, err error) {
	start := time.Now()
	defer func() { e.obs.observe("search", start, err, "results", len(res.Results)) }()

	req, err := toRequest(q)
	if err != nil {
		return SearchResponse{}, err
	}
	out, err := e.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	return SearchResponse{Results: fromResults(out.Results), Message: out.Message}, nil
}

// Datasets returns the overview computed by the last build.
func (e *Engine) Datasets() Overview {
	return e.datasetSvc.Overview()
}

// Catalog returns the dataset catalog service.
func (e *Engine) Catalog() *CatalogService {
	return &CatalogService{svc: e.catalogSvc, obs: e.obs}
}

// Health reports whether the index is built and the registry reachable.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	report := e.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	}
}
