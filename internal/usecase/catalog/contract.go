package catalog

import (
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/tabular"
)

// TableReader reads the catalog file. A missing file yields an empty table.
type TableReader interface {
	ReadFile(path string) (*tabular.Table, error)
}

// Normalizer maps catalog export headers onto entry keys.
type Normalizer interface {
	NormalizeRows(headers []string, rows []record.RawRow) []record.Record
}
