// Package ontology maps arbitrary column names onto a small canonical vocabulary.
package ontology

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/tabdex/internal/domain/record"
)

// Normalizer resolves raw headers against an alias table. Headers that match no
// family pass through verbatim, so normalization is total and lossless.
type Normalizer struct {
	families []Family
	index    map[string]string // stripped alias -> canonical
	ids      IDGenerator
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithIDGenerator overrides the generator used for rows without an id column.
func WithIDGenerator(g IDGenerator) Option {
	return func(n *Normalizer) {
		if g != nil {
			n.ids = g
		}
	}
}

// New builds a Normalizer. Alias families must be disjoint: a stripped alias
// claimed by two canonical fields is rejected.
func New(table []Family, opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		families: table,
		index:    make(map[string]string),
		ids:      NewULIDGenerator(nil),
	}
	for _, fam := range table {
		if fam.Canonical == "" {
			return nil, fmt.Errorf("alias family without canonical name")
		}
		for _, alias := range append([]string{fam.Canonical}, fam.Aliases...) {
			key := strip(alias)
			if key == "" {
				continue
			}
			if owner, ok := n.index[key]; ok && owner != fam.Canonical {
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", alias, owner, fam.Canonical)
			}
			n.index[key] = fam.Canonical
		}
	}
	for _, o := range opts {
		o(n)
	}
	return n, nil
}

// MustNew is New that panics on an invalid table. Meant for the built-in vocabularies.
func MustNew(table []Family, opts ...Option) *Normalizer {
	n, err := New(table, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// Default returns a Normalizer over DefaultVocabulary.
func Default(opts ...Option) *Normalizer {
	return MustNew(DefaultVocabulary, opts...)
}

// Normalize returns the canonical key for header, or header unchanged.
func (n *Normalizer) Normalize(header string) string {
	if canonical, ok := n.index[strip(header)]; ok {
		return canonical
	}
	return header
}

// canonical reports whether key is a canonical field of this vocabulary.
func (n *Normalizer) canonical(key string) bool {
	for _, f := range n.families {
		if f.Canonical == key {
			return true
		}
	}
	return false
}

// NormalizeHeaders normalizes a header row. When two columns resolve to the
// same key, the later one keeps its verbatim header (suffixed if still taken)
// so that no column is lost.
func (n *Normalizer) NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	for i, h := range headers {
		key := n.Normalize(h)
		if used[key] {
			key = h
		}
		for suffix := 2; used[key]; suffix++ {
			key = h + "_" + strconv.Itoa(suffix)
		}
		used[key] = true
		out[i] = key
	}
	return out
}

// NormalizeRow zips already-normalized headers with cell values and synthesizes
// the document id. Missing cells become empty strings. ok is false when every
// value is empty; such rows contribute no record.
func (n *Normalizer) NormalizeRow(row record.RawRow, headers []string) (rec record.Record, ok bool) {
	rec = make(record.Record, len(headers)+1)
	for i, h := range headers {
		v := ""
		if i < len(row) {
			v = strings.TrimSpace(row[i])
		}
		if prev, exists := rec[h]; exists && prev != "" {
			continue
		}
		rec[h] = v
	}
	if rec.IsEmpty() {
		return nil, false
	}
	n.assignDocID(rec)
	return rec, true
}

// NormalizeRows normalizes the header row and every data row, dropping empty rows.
// An id value already taken by an earlier row is replaced with a generated one.
func (n *Normalizer) NormalizeRows(headers []string, rows []record.RawRow) []record.Record {
	keys := n.NormalizeHeaders(headers)
	out := make([]record.Record, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if rec, ok := n.NormalizeRow(row, keys); ok {
			n.uniqueDocID(rec, seen)
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeMaps normalizes a batch of objects with the same id rules as NormalizeRows.
func (n *Normalizer) NormalizeMaps(objs []map[string]string) []record.Record {
	out := make([]record.Record, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	for _, m := range objs {
		if rec, ok := n.NormalizeMap(m); ok {
			n.uniqueDocID(rec, seen)
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeMap normalizes a pre-structured key/value object.
func (n *Normalizer) NormalizeMap(m map[string]string) (record.Record, bool) {
	headers := make([]string, 0, len(m))
	for k := range m {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	keys := n.NormalizeHeaders(headers)

	rec := make(record.Record, len(m)+1)
	for i, h := range headers {
		rec[keys[i]] = strings.TrimSpace(m[h])
	}
	if rec.IsEmpty() {
		return nil, false
	}
	n.assignDocID(rec)
	return rec, true
}

func (n *Normalizer) assignDocID(rec record.Record) {
	if id, ok := rec.Get(FieldID); ok {
		rec[record.DocIDKey] = id
		return
	}
	rec[record.DocIDKey] = n.ids.Next()
}

// strip lowercases and drops whitespace, underscores and hyphens.
func (n *Normalizer) uniqueDocID(rec record.Record, seen map[string]bool) {
	id := rec.DocID()
	for seen[id] {
		id = n.ids.Next()
	}
	rec[record.DocIDKey] = id
	seen[id] = true
}

func strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
