package source

import (
	"fmt"
	"strconv"
	"time"

	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
)

// uploadToHash converts an Upload to a map for HSET.
func uploadToHash(u domsrc.Upload) map[string]string {
	return map[string]string{
		"id":           u.ID,
		"name":         u.Name,
		"template":     u.Template,
		"format":       u.Format,
		"size":         strconv.FormatInt(u.Size, 10),
		"count":        strconv.Itoa(u.Count),
		"created_at":   strconv.FormatInt(u.Created.UnixMilli(), 10),
		"seq":          strconv.FormatInt(u.Seq, 10),
		"fixed_header": strconv.FormatBool(u.FixedHeader),
		"skip_rows":    strconv.Itoa(u.SkipRows),
		"header_row":   strconv.Itoa(u.HeaderRow),
	}
}

// uploadFromHash hydrates an Upload from an HGETALL result map.
func uploadFromHash(m map[string]string) (domsrc.Upload, error) {
	seq, err := strconv.ParseInt(m["seq"], 10, 64)
	if err != nil {
		return domsrc.Upload{}, fmt.Errorf("invalid seq: %w", err)
	}
	createdMs, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domsrc.Upload{}, fmt.Errorf("invalid created_at: %w", err)
	}

	// Optional numeric fields default to zero.
	size, _ := strconv.ParseInt(m["size"], 10, 64)
	count, _ := strconv.Atoi(m["count"])
	skip, _ := strconv.Atoi(m["skip_rows"])
	header, _ := strconv.Atoi(m["header_row"])
	fixed, _ := strconv.ParseBool(m["fixed_header"])

	return domsrc.Upload{
		ID:          m["id"],
		Name:        m["name"],
		Template:    m["template"],
		Format:      m["format"],
		Size:        size,
		Count:       count,
		Created:     time.UnixMilli(createdMs).UTC(),
		Seq:         seq,
		FixedHeader: fixed,
		SkipRows:    skip,
		HeaderRow:   header,
	}, nil
}
