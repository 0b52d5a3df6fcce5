package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/tabdex/internal/domain"
)

// decodeObjects parses a JSON upload: either an array of objects or an object
// with a "records" array. Scalars are stringified; nested values are kept as
// compact JSON text.
func decodeObjects(data []byte) ([]map[string]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raw []map[string]json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode json array: %w", domain.ErrInvalidRequest, err)
		}
	case '{':
		var env struct {
			Records []map[string]json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: decode json object: %w", domain.ErrInvalidRequest, err)
		}
		raw = env.Records
	default:
		return nil, fmt.Errorf("%w: json upload must be an array or an object with records", domain.ErrInvalidRequest)
	}

	out := make([]map[string]string, 0, len(raw))
	for _, obj := range raw {
		m := make(map[string]string, len(obj))
		for k, v := range obj {
			m[k] = scalar(v)
		}
		out = append(out, m)
	}
	return out, nil
}

func scalar(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case 'n':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return strconv.FormatBool(b)
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			return buf.String()
		}
	}
	// Numbers keep their literal text.
	return string(v)
}
