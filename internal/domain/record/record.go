package record

// DocIDKey is the synthesized key every normalized record carries.
const DocIDKey = "_docId"

// RawRow is one data line as ordered cell strings.
type RawRow []string

// Record is a normalized row: canonical (or verbatim) column name to cell value.
// An empty value means the cell was absent.
type Record map[string]string

// DocID returns the synthesized document id.
func (r Record) DocID() string { return r[DocIDKey] }

// Get returns the trimmed value for key and whether it is present and non-empty.
func (r Record) Get(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Value returns the value for key or an empty string.
func (r Record) Value(key string) string { return r[key] }

// IsEmpty reports whether every column except the synthesized id is empty.
func (r Record) IsEmpty() bool {
	for k, v := range r {
		if k == DocIDKey {
			continue
		}
		if v != "" {
			return false
		}
	}
	return true
}
