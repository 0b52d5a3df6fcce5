package chi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/convert"
	domcat "github.com/kailas-cloud/tabdex/internal/domain/catalog"
	"github.com/kailas-cloud/tabdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tabdex/internal/domain/search/request"
	"github.com/kailas-cloud/tabdex/internal/logger"
	healthuc "github.com/kailas-cloud/tabdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tabdex/internal/usecase/ingest"
	"github.com/kailas-cloud/tabdex/internal/version"
)

// multipartMemory is the part of a multipart body kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	echo := SearchFilters{
		Type:     q.Get("type"),
		Sector:   q.Get("sector"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}

	limit, err := s.parseLimit(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	filters, err := filtersFromQuery(echo)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	req, err := request.New(q.Get("q"), filters, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   req.Query(),
		Results: items,
		Total:   len(items),
		Limit:   req.Limit(),
		Filters: echo,
		Message: resp.Message,
	})
}

func (s *Server) parseLimit(raw string) (int, error) {
	if raw == "" {
		return s.opts.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > s.opts.MaxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", s.opts.MaxLimit)
	}
	return n, nil
}

func filtersFromQuery(f SearchFilters) (filter.Expression, error) {
	from, err := optionalDate("dateFrom", f.DateFrom)
	if err != nil {
		return filter.Expression{}, err
	}
	to, err := optionalDate("dateTo", f.DateTo)
	if err != nil {
		return filter.Expression{}, err
	}
	dr, err := filter.NewDateRange(from, to)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("date range: %w", err)
	}
	expr, err := filter.NewExpression(f.Type, f.Sector, dr)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("type filter: %w", err)
	}
	return expr, nil
}

func optionalDate(name, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, ok := convert.ParseDate(raw)
	if !ok {
		return nil, fmt.Errorf("%s: unrecognized date %q", name, raw)
	}
	return &t, nil
}

// Ingest handles POST /api/v1/ingest (multipart field "file").
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "multipart field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("read upload: %w", err))
		return
	}

	up := ingestuc.Upload{
		Name:     header.Filename,
		Data:     data,
		Template: strings.TrimSpace(r.FormValue("template")),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip_rows", &up.SkipRows}, {"header_row", &up.HeaderRow}} {
		raw := strings.TrimSpace(r.FormValue(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, p.name+" must be a non-negative integer")
			return
		}
		*p.dst = n
		up.Fixed = true
	}

	res, err := s.ingest.Ingest(r.Context(), up)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Count:  res.Count,
		Sample: documentsToItems(res.Sample),
		Source: sourceToItem(res.Source),
	})
}

// Reindex handles POST /api/v1/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.ingest.Reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	entries, err := s.catalog.Reload(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Warn("catalog reload failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, ReindexResponse{Count: n, CatalogEntries: entries})
}

// ListSources handles GET /api/v1/sources.
func (s *Server) ListSources(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.ingest.Sources(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SourceItem, len(uploads))
	for i, u := range uploads {
		items[i] = sourceToItem(u)
	}
	writeJSON(w, http.StatusOK, SourceListResponse{Items: items, Total: len(items)})
}

// DeleteSource handles DELETE /api/v1/sources/{id}.
func (s *Server) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := s.ingest.DeleteSource(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteSourceResponse{ID: id, Count: n})
}

// Datasets handles GET /api/v1/datasets.
func (s *Server) Datasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.datasets.Overview())
}

// ListCatalog handles GET /api/v1/catalog?q=&year=.
func (s *Server) ListCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := strings.TrimSpace(q.Get("q"))

	var (
		entries []domcat.Entry
		err     error
	)
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, convErr := strconv.Atoi(raw)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "year must be an integer")
			return
		}
		entries, err = s.catalog.ByYear(r.Context(), year)
		if err == nil && keyword != "" {
			entries = matching(entries, keyword)
		}
	} else {
		entries, err = s.catalog.Search(r.Context(), keyword)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CatalogListResponse{Items: entries, Total: len(entries)})
}

func matching(entries []domcat.Entry, keyword string) []domcat.Entry {
	out := make([]domcat.Entry, 0, len(entries))
	for i := range entries {
		if entries[i].Matches(keyword) {
			out = append(out, entries[i])
		}
	}
	return out
}

// GetCatalogEntry handles GET /api/v1/catalog/{surveyId}.
func (s *Server) GetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Get(r.Context(), chi.URLParam(r, "surveyId"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
		Version:   version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
