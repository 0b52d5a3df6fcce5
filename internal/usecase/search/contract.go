package search

import (
	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/index"
)

// Index is the read side of the document index.
type Index interface {
	Search(field document.Field, query string, limit int) []index.Hit
	Get(id string) (document.Document, bool)
}
