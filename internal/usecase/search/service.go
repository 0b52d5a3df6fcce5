package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/domain"
	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/search/request"
	"github.com/kailas-cloud/tabdex/internal/domain/search/result"
	"github.com/kailas-cloud/tabdex/internal/logger"
	"github.com/kailas-cloud/tabdex/internal/metrics"
)

// ShortQueryMessage explains an empty answer to a query under the minimum length.
var ShortQueryMessage = fmt.Sprintf("query must be at least %d characters", request.MinQueryLength)

var fieldWeight = map[document.Field]float64{
	document.FieldTitle:    3,
	document.FieldContent:  2,
	document.FieldKeywords: 1,
}

// Response is the outcome of a federated query.
type Response struct {
	Results []result.Result
	// Message is set when the query was answered without searching.
	Message string
}

// Service runs federated queries across the indexed fields.
type Service struct {
	idx         Index
	rankByScore bool
}

// New creates a search service. With rankByScore the results are stable-sorted
// by score; otherwise they keep field-priority then insertion order.
func New(idx Index, rankByScore bool) *Service {
	return &Service{idx: idx, rankByScore: rankByScore}
}

type candidate struct {
	doc     document.Document
	score   float64
	matched []document.Field
}

// Search executes req. Queries under the minimum length yield an empty
// response with a message, not an error.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	if s.idx == nil {
		return Response{}, domain.ErrIndexUnavailable
	}
	if req.TooShort() {
		return Response{Results: []result.Result{}, Message: ShortQueryMessage}, nil
	}

	start := time.Now()

	order := make([]string, 0, req.FieldLimit())
	byID := make(map[string]*candidate, req.FieldLimit())
	for _, f := range document.IndexedFields {
		for _, h := range s.idx.Search(f, req.Query(), req.FieldLimit()) {
			c, seen := byID[h.ID]
			if !seen {
				doc, ok := s.idx.Get(h.ID)
				if !ok {
					continue
				}
				c = &candidate{doc: doc}
				byID[h.ID] = c
				order = append(order, h.ID)
			}
			c.score += fieldWeight[f] + float64(h.Proximity)
			c.matched = append(c.matched, f)
		}
	}

	filters := req.Filters()
	results := make([]result.Result, 0, min(len(order), req.Limit()))
	for _, id := range order {
		c := byID[id]
		if !filters.Match(&c.doc) {
			continue
		}
		results = append(results, result.New(c.doc, c.score, c.matched))
		if !s.rankByScore && len(results) == req.Limit() {
			break
		}
	}

	if s.rankByScore {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score() > results[j].Score()
		})
		if len(results) > req.Limit() {
			results = results[:req.Limit()]
		}
	}

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(len(results)))
	logger.FromContext(ctx).Debug("federated search",
		zap.Int("candidates", len(order)),
		zap.Int("results", len(results)),
		zap.Bool("filtered", !filters.IsEmpty()),
	)

	return Response{Results: results}, nil
}
