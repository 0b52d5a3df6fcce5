package result

import "github.com/kailas-cloud/tabdex/internal/domain/document"

// Result is a single federated search hit.
type Result struct {
	doc     document.Document
	score   float64
	matched []document.Field
}

// New creates a search result.
func New(doc document.Document, score float64, matched []document.Field) Result {
	return Result{doc: doc, score: score, matched: matched}
}

// Document returns the matched document.
func (r *Result) Document() *document.Document { return &r.doc }

// ID returns the document identifier.
func (r *Result) ID() string { return r.doc.ID() }

// Score returns the field-weight plus proximity score.
func (r *Result) Score() float64 { return r.score }

// MatchedFields returns the indexed fields that produced this hit, in priority order.
func (r *Result) MatchedFields() []document.Field { return r.matched }
