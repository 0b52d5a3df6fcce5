// Package convert turns normalized records into searchable documents using
// per-domain templates.
package convert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kailas-cloud/tabdex/internal/domain/document"
	"github.com/kailas-cloud/tabdex/internal/domain/record"
	"github.com/kailas-cloud/tabdex/internal/ontology"
)

// Metadata keys added by the converter.
const (
	MetaTemplate = "template"
	MetaFile     = "file"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2006",
}

// Converter maps records to documents. Conversion never fails.
type Converter struct {
	templates map[string]Template
	now       func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithClock sets the ingestion-time source used when a row carries no date.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTemplate registers or replaces a template.
func WithTemplate(t Template) Option {
	return func(c *Converter) {
		c.templates[strings.ToLower(t.Name)] = t
	}
}

// New creates a Converter with the built-in templates.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		templates: make(map[string]Template),
		now:       time.Now,
	}
	for _, t := range Builtin() {
		c.templates[t.Name] = t
	}
	for _, o := range opts {
		o(c)
	}
	for name, t := range c.templates {
		if t.Name == "" || !t.Type.IsValid() {
			return nil, fmt.Errorf("template %q: invalid name or type %q", name, t.Type)
		}
	}
	if _, ok := c.templates[Generic]; !ok {
		return nil, fmt.Errorf("template %q is required", Generic)
	}
	return c, nil
}

// Template resolves a template by name, case-insensitively. Unknown names
// resolve to the generic template.
func (c *Converter) Template(name string) Template {
	if t, ok := c.templates[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return c.templates[Generic]
}

// Has reports whether name is a registered template.
func (c *Converter) Has(name string) bool {
	_, ok := c.templates[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names lists registered template names, sorted.
func (c *Converter) Names() []string {
	out := make([]string, 0, len(c.templates))
	for n := range c.templates {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Convert produces exactly one document for rec.
func (c *Converter) Convert(rec record.Record, t Template) document.Document {
	return c.convert(rec, t, "")
}

func (c *Converter) convert(rec record.Record, t Template, file string) document.Document {
	docID := rec.DocID()
	if docID == "" {
		docID = strings.ToLower(ulid.Make().String())
	}

	meta := make(map[string]string, len(rec)+1)
	for k, v := range rec {
		if k == record.DocIDKey || v == "" {
			continue
		}
		meta[k] = v
	}
	if _, ok := meta[ontology.FieldSector]; !ok && t.Sector != "" {
		meta[ontology.FieldSector] = t.Sector
	}
	meta[MetaTemplate] = t.Name
	if file != "" {
		meta[MetaFile] = file
	}

	now := c.now()
	src := document.Source{Name: t.Source, Reliability: "official", LastUpdated: now}
	if name, ok := rec.Get(ontology.FieldSource); ok {
		src.Name = name
		src.Reliability = "reported"
	}

	return document.Reconstruct(
		t.Name+"-"+docID,
		t.Type,
		t.title(rec),
		t.content(rec),
		t.keywords(rec),
		src,
		meta,
		c.createdAt(rec, now),
	)
}

// ConvertAll converts every record with the named template.
func (c *Converter) ConvertAll(recs []record.Record, template string) []document.Document {
	t := c.Template(template)
	out := make([]document.Document, len(recs))
	for i, rec := range recs {
		out[i] = c.convert(rec, t, "")
	}
	return out
}

// ConvertFile converts records read from an uploaded file and records the file
// name in each document's metadata.
func (c *Converter) ConvertFile(recs []record.Record, template, file string) []document.Document {
	t := c.Template(template)
	out := make([]document.Document, len(recs))
	for i, rec := range recs {
		out[i] = c.convert(rec, t, file)
	}
	return out
}

// createdAt prefers the row date, then a leading four-digit year, then now.
func (c *Converter) createdAt(rec record.Record, now time.Time) time.Time {
	if v, ok := rec.Get(ontology.FieldDate); ok {
		if ts, ok := ParseDate(v); ok {
			return ts
		}
	}
	if v, ok := rec.Get(ontology.FieldYear); ok && len(v) >= 4 {
		if ts, err := time.Parse("2006", v[:4]); err == nil {
			return ts.UTC()
		}
	}
	return now
}

// ParseDate parses RFC3339, ISO date, day/month/year or a bare year.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
