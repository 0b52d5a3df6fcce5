package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/tabdex/internal/domain/document"
)

// SectorKey is the metadata key the sector filter inspects.
const SectorKey = "sector"

// Expression is the AND-composition of the optional post-filters.
// A zero Expression matches every document.
type Expression struct {
	docType   document.Type
	sector    string
	dateRange *DateRange
}

// NewExpression validates and creates a filter Expression.
// rawType and sector may be empty; dateRange may be nil.
func NewExpression(rawType, sector string, dateRange *DateRange) (Expression, error) {
	var t document.Type
	if strings.TrimSpace(rawType) != "" {
		parsed, err := document.ParseType(rawType)
		if err != nil {
			return Expression{}, err
		}
		t = parsed
	}
	return Expression{docType: t, sector: strings.TrimSpace(sector), dateRange: dateRange}, nil
}

// Type returns the type filter (empty when unset).
func (e Expression) Type() document.Type { return e.docType }

// Sector returns the sector filter (empty when unset).
func (e Expression) Sector() string { return e.sector }

// DateRange returns the date range filter (nil when unset).
func (e Expression) DateRange() *DateRange { return e.dateRange }

// IsEmpty reports whether no filter is set.
func (e Expression) IsEmpty() bool {
	return e.docType == "" && e.sector == "" && e.dateRange == nil
}

// Match applies the filters in order: type, sector, date range.
func (e Expression) Match(doc *document.Document) bool {
	if e.docType != "" && !strings.EqualFold(string(doc.Type()), string(e.docType)) {
		return false
	}
	if e.sector != "" && !matchSector(doc, e.sector) {
		return false
	}
	if e.dateRange != nil && !e.dateRange.Contains(doc.CreatedAt()) {
		return false
	}
	return true
}

// matchSector accepts a case-insensitive substring hit in metadata.sector or keywords.
func matchSector(doc *document.Document, sector string) bool {
	needle := strings.ToLower(sector)
	if strings.Contains(strings.ToLower(doc.MetadataValue(SectorKey)), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Keywords()), needle)
}

// DateRange is an inclusive [start, end] bound on createdAt.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange creates a range from optional bounds. The range only
// exists when both bounds are present; otherwise nil is returned.
func NewDateRange(start, end *time.Time) (*DateRange, error) {
	if start == nil || end == nil {
		return nil, nil
	}
	if end.Before(*start) {
		return nil, fmt.Errorf("date range end %s is before start %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return &DateRange{start: *start, end: *end}, nil
}

// Start returns the lower inclusive bound.
func (r *DateRange) Start() time.Time { return r.start }

// End returns the upper inclusive bound.
func (r *DateRange) End() time.Time { return r.end }

// Contains reports whether t lies within the inclusive bounds.
func (r *DateRange) Contains(t time.Time) bool {
	return !t.Before(r.start) && !t.After(r.end)
}
