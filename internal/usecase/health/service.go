package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the index cannot serve queries.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckPending indicates the component is still starting.
	CheckPending CheckResult = "pending"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents int
}

// Service coordinates health checks.
type Service struct {
	index   IndexChecker
	sources SourcePinger
}

// New creates a Service. sources can be nil.
func New(index IndexChecker, sources SourcePinger) *Service {
	return &Service{index: index, sources: sources}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.sources != nil {
		if err := s.sources.Ping(ctx); err != nil {
			checks["sources"] = CheckError
			status = Degraded
		} else {
			checks["sources"] = CheckOK
		}
	}

	docs := 0
	if s.index.Ready() {
		checks["index"] = CheckOK
		docs = s.index.Len()
	} else {
		checks["index"] = CheckPending
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks, Documents: docs}
}
