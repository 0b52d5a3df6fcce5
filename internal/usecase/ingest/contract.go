package ingest

import (
	"context"

	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
	"github.com/kailas-cloud/tabdex/internal/index"
	"github.com/kailas-cloud/tabdex/internal/usecase/dataset"
)

// Index is the write side of the live document index.
type Index interface {
	Current() *index.Store
	Swap(next *index.Store) *index.Store
}

// Normalizer maps raw rows and pre-structured objects onto canonical records.
type Normalizer interface {
	NormalizeRows(headers []string, rows []record.RawRow) []record.Record
	NormalizeMaps(objs []map[string]string) []record.Record
}

// Converter turns uploaded records into documents.
type Converter interface {
	ConvertFile(recs []record.Record, template, file string) []document.Document
}

// Datasets reloads the conventional datasets.
type Datasets interface {
	LoadAll(ctx context.Context) (dataset.Result, error)
}

// SourceRegistry keeps accepted uploads for replay.
type SourceRegistry interface {
	Save(ctx context.Context, u domsrc.Upload, data []byte) (domsrc.Upload, error)
	List(ctx context.Context) ([]domsrc.Upload, error)
	Data(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
