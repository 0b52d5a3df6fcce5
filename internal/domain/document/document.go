package document

import (
	"fmt"
	"strings"
	"time"
)

// Type is the closed set of document kinds.
type Type string

const (
	// TypeProject is a government project.
	TypeProject Type = "PROJECT"
	// TypeOpportunity is an investment or funding opportunity.
	TypeOpportunity Type = "OPPORTUNITY"
	// TypePolicy is a policy document.
	TypePolicy Type = "POLICY"
	// TypeInsight is an analytical insight.
	TypeInsight Type = "INSIGHT"
	// TypeMinistry is a ministry record.
	TypeMinistry Type = "MINISTRY"
	// TypeData is a statistical data point.
	TypeData Type = "DATA"
)

var validTypes = map[Type]struct{}{
	TypeProject:     {},
	TypeOpportunity: {},
	TypePolicy:      {},
	TypeInsight:     {},
	TypeMinistry:    {},
	TypeData:        {},
}

// ParseType resolves a type tag case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validTypes[t]; !ok {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// IsValid reports whether t belongs to the closed tag set.
func (t Type) IsValid() bool {
	_, ok := validTypes[t]
	return ok
}

// Field names an indexed free-text field.
type Field string

const (
	// FieldTitle is the title field.
	FieldTitle Field = "title"
	// FieldContent is the content field.
	FieldContent Field = "content"
	// FieldKeywords is the keywords field.
	FieldKeywords Field = "keywords"
)

// IndexedFields lists the indexed fields in query priority order.
var IndexedFields = []Field{FieldTitle, FieldContent, FieldKeywords}

// Source is display-only provenance.
type Source struct {
	Name        string    `json:"name"`
	Reliability string    `json:"reliability"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Document is the searchable unit (immutable value object).
type Document struct {
	id        string
	docType   Type
	title     string
	content   string
	keywords  string
	source    Source
	metadata  map[string]string
	createdAt time.Time
}

// New validates and creates a Document.
func New(
	id string, docType Type, title, content, keywords string,
	source Source, metadata map[string]string, createdAt time.Time,
) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if !docType.IsValid() {
		return Document{}, fmt.Errorf("invalid document type %q", docType)
	}
	return Document{
		id:        id,
		docType:   docType,
		title:     title,
		content:   content,
		keywords:  keywords,
		source:    source,
		metadata:  cloneStringMap(metadata),
		createdAt: createdAt,
	}, nil
}

// Reconstruct creates a Document without validation (snapshot hydration).
func Reconstruct(
	id string, docType Type, title, content, keywords string,
	source Source, metadata map[string]string, createdAt time.Time,
) Document {
	return Document{
		id: id, docType: docType, title: title, content: content, keywords: keywords,
		source: source, metadata: cloneStringMap(metadata), createdAt: createdAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Type returns the document type tag.
func (d *Document) Type() Type { return d.docType }

// Title returns the title text.
func (d *Document) Title() string { return d.title }

// Content returns the content text.
func (d *Document) Content() string { return d.content }

// Keywords returns the space-joined keyword text.
func (d *Document) Keywords() string { return d.keywords }

// Source returns the provenance.
func (d *Document) Source() Source { return d.source }

// Metadata returns a copy of the opaque metadata bag.
func (d *Document) Metadata() map[string]string { return cloneStringMap(d.metadata) }

// MetadataValue returns one metadata value, or "" when absent.
func (d *Document) MetadataValue(key string) string { return d.metadata[key] }

// CreatedAt returns the document timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Text returns the value of an indexed field.
func (d *Document) Text(f Field) string {
	switch f {
	case FieldTitle:
		return d.title
	case FieldContent:
		return d.content
	case FieldKeywords:
		return d.keywords
	default:
		return ""
	}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
