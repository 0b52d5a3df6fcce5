package dataset

import (
	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/tabular"
)

// TableReader reads a tabular file. A missing file yields an empty table.
type TableReader interface {
	ReadFile(path string) (*tabular.Table, error)
}

// Normalizer maps raw rows onto canonical records.
type Normalizer interface {
	NormalizeRows(headers []string, rows []record.RawRow) []record.Record
}

// Converter turns records into documents with a named template.
type Converter interface {
	ConvertAll(recs []record.Record, template string) []document.Document
}
