package chi

import (
	"time"

	domcat "github.com/kailas-cloud/tabdex/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/search/result"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
)

// ErrorCode is the machine-readable error identifier in error bodies.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	ErrorCodeUnsupportedFormat ErrorCode = "unsupported_format"
	ErrorCodePayloadTooLarge   ErrorCode = "payload_too_large"
	ErrorCodeSourceRead        ErrorCode = "source_read_failed"
	ErrorCodeIndexUnavailable  ErrorCode = "index_unavailable"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// DocumentItem is the wire form of a document.
type DocumentItem struct {
	ID        string            `json:"id"`
	Type      domdoc.Type       `json:"type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Keywords  string            `json:"keywords,omitempty"`
	Source    domdoc.Source     `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SearchResultItem is one search hit.
type SearchResultItem struct {
	DocumentItem
	Score         float64        `json:"score"`
	MatchedFields []domdoc.Field `json:"matchedFields"`
}

// SearchFilters echoes the filters applied to a query.
type SearchFilters struct {
	Type     string `json:"type,omitempty"`
	Sector   string `json:"sector,omitempty"`
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Filters SearchFilters      `json:"filters"`
	Message string             `json:"message,omitempty"`
}

// SourceItem describes a registered upload.
type SourceItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	Format    string    `json:"format"`
	Size      int64     `json:"size"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// IngestResponse is the body of POST /api/v1/ingest.
type IngestResponse struct {
	Count  int            `json:"count"`
	Sample []DocumentItem `json:"sample"`
	Source SourceItem     `json:"source"`
}

// ReindexResponse is the body of POST /api/v1/reindex.
type ReindexResponse struct {
	Count          int `json:"count"`
	CatalogEntries int `json:"catalogEntries"`
}

// SourceListResponse is the body of GET /api/v1/sources.
type SourceListResponse struct {
	Items []SourceItem `json:"items"`
	Total int          `json:"total"`
}

// DeleteSourceResponse is the body of DELETE /api/v1/sources/{id}.
type DeleteSourceResponse struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// CatalogListResponse is the body of GET /api/v1/catalog.
type CatalogListResponse struct {
	Items []domcat.Entry `json:"items"`
	Total int            `json:"total"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
	Version   string            `json:"version"`
}

func documentToItem(d *domdoc.Document) DocumentItem {
	return DocumentItem{
		ID:        d.ID(),
		Type:      d.Type(),
		Title:     d.Title(),
		Content:   d.Content(),
		Keywords:  d.Keywords(),
		Source:    d.Source(),
		Metadata:  d.Metadata(),
		CreatedAt: d.CreatedAt(),
	}
}

func documentsToItems(docs []domdoc.Document) []DocumentItem {
	out := make([]DocumentItem, len(docs))
	for i := range docs {
		out[i] = documentToItem(&docs[i])
	}
	return out
}

func resultToItem(r *result.Result) SearchResultItem {
	return SearchResultItem{
		DocumentItem:  documentToItem(r.Document()),
		Score:         r.Score(),
		MatchedFields: r.MatchedFields(),
	}
}

func sourceToItem(u domsrc.Upload) SourceItem {
	return SourceItem{
		ID:        u.ID,
		Name:      u.Name,
		Template:  u.Template,
		Format:    u.Format,
		Size:      u.Size,
		Count:     u.Count,
		CreatedAt: u.Created,
	}
}
