package catalog

import (
	"strconv"
	"strings"
)

// Entry describes a dataset as a whole (read-only reference record).
type Entry struct {
	SurveyID        string `json:"surveyId"`
	Title           string `json:"title"`
	Nation          string `json:"nation"`
	Authority       string `json:"authority"`
	CollectionStart string `json:"collectionStart"`
	CollectionEnd   string `json:"collectionEnd"`
	Created         string `json:"created"`
	Changed         string `json:"changed"`
}

// Matches reports whether keyword occurs (case-insensitively) in the title,
// survey id, or collection years.
func (e *Entry) Matches(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	for _, f := range []string{e.Title, e.SurveyID, e.CollectionStart, e.CollectionEnd} {
		if strings.Contains(strings.ToLower(f), kw) {
			return true
		}
	}
	return false
}

// Covers reports whether year falls inside the collection window.
// A missing end year is treated as a single-year collection.
func (e *Entry) Covers(year int) bool {
	start, ok := leadingYear(e.CollectionStart)
	if !ok {
		return false
	}
	end, ok := leadingYear(e.CollectionEnd)
	if !ok {
		end = start
	}
	return year >= start && year <= end
}

func leadingYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}
