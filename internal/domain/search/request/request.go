package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/tabdex/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MinQueryLength is the hard minimum trimmed query length in characters.
	MinQueryLength = 2
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
	// HeadroomFactor multiplies the limit for per-field raw hits.
	HeadroomFactor = 3
)

// Request is a validated federated search query.
type Request struct {
	query   string
	filters filter.Expression
	limit   int
}

// New validates and normalizes search parameters.
// A query shorter than MinQueryLength is accepted here; the engine answers it
// with an empty result set.
func New(query string, filters filter.Expression, limit int) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: strings.TrimSpace(query), filters: filters, limit: limit}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Filters returns the post-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// FieldLimit returns how many raw hits to request per indexed field.
func (r *Request) FieldLimit() int { return r.limit * HeadroomFactor }

// TooShort reports whether the query falls under the minimum length.
func (r *Request) TooShort() bool {
	return utf8.RuneCountInString(r.query) < MinQueryLength
}
