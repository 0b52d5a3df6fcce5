package tabdex

import "github.com/kailas-cloud/tabdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrUnsupportedFormat = domain.ErrUnsupportedFormat
	ErrSourceRead        = domain.ErrSourceRead
	ErrIndexUnavailable  = domain.ErrIndexUnavailable
)
