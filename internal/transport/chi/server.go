package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/domain"
	cataloguc "github.com/kailas-cloud/tabdex/internal/usecase/catalog"
	datasetuc "github.com/kailas-cloud/tabdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/tabdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tabdex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tabdex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, body ErrorResponse) bool

// Options tunes request handling.
type Options struct {
	DefaultLimit   int
	MaxLimit       int
	MaxUploadBytes int64
	// ExposeErrors adds the underlying cause to error bodies.
	ExposeErrors bool
}

// Server serves the tabdex HTTP API.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	datasets      *datasetuc.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	datasets *datasetuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:   search,
		ingest:   ingest,
		datasets: datasets,
		catalog:  catalog,
		health:   health,
		opts:     opts,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedFormat),
		sentinelHandler(domain.ErrSourceRead, http.StatusUnprocessableEntity, ErrorCodeSourceRead),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, ErrorCodeIndexUnavailable),
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrUnsupportedFormat,
		domain.ErrSourceRead,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, body ErrorResponse) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		body.Code = code
		writeJSON(w, status, body)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	body := ErrorResponse{Message: safeDomainMessage(err)}
	if s.opts.ExposeErrors {
		body.Detail = err.Error()
	}
	for _, h := range s.errorHandlers {
		if h(w, err, body) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	body.Code = ErrorCodeInternalError
	writeJSON(w, http.StatusInternalServerError, body)
}
