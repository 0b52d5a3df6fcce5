package tabdex

import (
	"context"

	domcat "github.com/kailas-cloud/tabdex/internal/domain/catalog"
	"github.com/kailas-cloud/tabdex/internal/domain/dataset"
	"github.com/kailas-cloud/tabdex/internal/domain/search/request"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
	healthuc "github.com/kailas-cloud/tabdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tabdex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tabdex/internal/usecase/search"
)

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn  func(ctx context.Context, up ingestuc.Upload) (ingestuc.Result, error)
	reindexFn func(ctx context.Context) (int, error)
	sourcesFn func(ctx context.Context) ([]domsrc.Upload, error)
	deleteFn  func(ctx context.Context, id string) (int, error)
	length    int
}

func (m *mockIngestUC) Ingest(ctx context.Context, up ingestuc.Upload) (ingestuc.Result, error) {
	return m.ingestFn(ctx, up)
}

func (m *mockIngestUC) Reindex(ctx context.Context) (int, error) {
	return m.reindexFn(ctx)
}

func (m *mockIngestUC) Sources(ctx context.Context) ([]domsrc.Upload, error) {
	return m.sourcesFn(ctx)
}

func (m *mockIngestUC) DeleteSource(ctx context.Context, id string) (int, error) {
	return m.deleteFn(ctx, id)
}

func (m *mockIngestUC) Len() int { return m.length }

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (searchuc.Response, error) {
	return m.searchFn(ctx, req)
}

// --- datasetUseCase mock ---

type mockDatasetUC struct {
	overview dataset.Overview
}

func (m *mockDatasetUC) Overview() dataset.Overview { return m.overview }

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	listFn   func(ctx context.Context) ([]domcat.Entry, error)
	getFn    func(ctx context.Context, surveyID string) (domcat.Entry, error)
	searchFn func(ctx context.Context, keyword string) ([]domcat.Entry, error)
	byYearFn func(ctx context.Context, year int) ([]domcat.Entry, error)
	reloadFn func(ctx context.Context) (int, error)
}

func (m *mockCatalogUC) List(ctx context.Context) ([]domcat.Entry, error) {
	return m.listFn(ctx)
}

func (m *mockCatalogUC) Get(ctx context.Context, surveyID string) (domcat.Entry, error) {
	return m.getFn(ctx, surveyID)
}

func (m *mockCatalogUC) Search(ctx context.Context, keyword string) ([]domcat.Entry, error) {
	return m.searchFn(ctx, keyword)
}

func (m *mockCatalogUC) ByYear(ctx context.Context, year int) ([]domcat.Entry, error) {
	return m.byYearFn(ctx, year)
}

func (m *mockCatalogUC) Reload(ctx context.Context) (int, error) {
	return m.reloadFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
