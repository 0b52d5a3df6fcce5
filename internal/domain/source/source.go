package source

import (
	"fmt"
	"strings"
	"time"
)

// Upload is an accepted ingestion source kept for replay on re-index.
type Upload struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Template string    `json:"template"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Count    int       `json:"count"`
	Created  time.Time `json:"createdAt"`
	// Seq orders uploads for replay.
	Seq int64 `json:"seq"`
	// Header recovery parameters used at upload time.
	FixedHeader bool `json:"fixedHeader"`
	SkipRows    int  `json:"skipRows"`
	HeaderRow   int  `json:"headerRow"`
}

// Validate checks the fields required for replay.
func (u *Upload) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("upload id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("upload name is required")
	}
	if u.SkipRows < 0 || u.HeaderRow < 0 {
		return fmt.Errorf("header offsets must be non-negative")
	}
	return nil
}
