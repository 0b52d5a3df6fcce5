package tabdex

import (
	"fmt"

	"github.com/kailas-cloud/tabdex/internal/domain"
	domdoc "github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/search/filter"
	"github.com/kailas-cloud/tabdex/internal/domain/search/request"
	"github.com/kailas-cloud/tabdex/internal/domain/search/result"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
	ingestuc "github.com/kailas-cloud/tabdex/internal/usecase/ingest"
)

func toRequest(q Query) (request.Request, error) {
	dr, err := filter.NewDateRange(q.DateFrom, q.DateTo)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	expr, err := filter.NewExpression(q.Type, q.Sector, dr)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	req, err := request.New(q.Text, expr, q.Limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return req, nil
}

func fromDocument(d *domdoc.Document) Document {
	src := d.Source()
	return Document{
		ID:       d.ID(),
		Type:     string(d.Type()),
		Title:    d.Title(),
		Content:  d.Content(),
		Keywords: d.Keywords(),
		Source: Source{
			Name:        src.Name,
			Reliability: src.Reliability,
			LastUpdated: src.LastUpdated,
		},
		Metadata:  d.Metadata(),
		CreatedAt: d.CreatedAt(),
	}
}

func fromDocuments(docs []domdoc.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromDocument(&docs[i])
	}
	return out
}

func fromResults(results []result.Result) []Result {
	out := make([]Result, len(results))
	for i := range results {
		r := &results[i]
		fields := make([]string, len(r.MatchedFields()))
		for j, f := range r.MatchedFields() {
			fields[j] = string(f)
		}
		out[i] = Result{
			Document:      fromDocument(r.Document()),
			Score:         r.Score(),
			MatchedFields: fields,
		}
	}
	return out
}

func toUpload(u Upload) ingestuc.Upload {
	return ingestuc.Upload{
		Name:      u.Name,
		Data:      u.Data,
		Template:  u.Template,
		Fixed:     u.FixedHeader,
		SkipRows:  u.SkipRows,
		HeaderRow: u.HeaderRow,
	}
}

func fromIngestResult(r ingestuc.Result) IngestResult {
	return IngestResult{
		SourceID: r.Source.ID,
		Template: r.Source.Template,
		Count:    r.Count,
		Sample:   fromDocuments(r.Sample),
	}
}

func fromUploads(uploads []domsrc.Upload) []SourceInfo {
	out := make([]SourceInfo, len(uploads))
	for i, u := range uploads {
		out[i] = SourceInfo{
			ID:        u.ID,
			Name:      u.Name,
			Template:  u.Template,
			Format:    u.Format,
			Size:      u.Size,
			Count:     u.Count,
			CreatedAt: u.Created,
		}
	}
	return out
}
