package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockSourcePinger struct {
	err error
}

func (m *mockSourcePinger) Ping(_ context.Context) error { return m.err }

type mockIndexChecker struct {
	ready bool
	n     int
}

func (m *mockIndexChecker) Ready() bool { return m.ready }
func (m *mockIndexChecker) Len() int    { return m.n }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockIndexChecker{ready: true, n: 12}, &mockSourcePinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["sources"] != CheckOK {
		t.Errorf("expected sources %q, got %q", CheckOK, r.Checks["sources"])
	}
	if r.Checks["index"] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks["index"])
	}
	if r.Documents != 12 {
		t.Errorf("expected 12 documents, got %d", r.Documents)
	}
}

func TestCheck_SourcesError(t *testing.T) {
	svc := New(&mockIndexChecker{ready: true}, &mockSourcePinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["sources"] != CheckError {
		t.Errorf("expected sources %q, got %q", CheckError, r.Checks["sources"])
	}
}

func TestCheck_IndexNotBuilt(t *testing.T) {
	svc := New(&mockIndexChecker{n: 3}, &mockSourcePinger{err: errors.New("down")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["index"] != CheckPending {
		t.Errorf("expected index %q, got %q", CheckPending, r.Checks["index"])
	}
	if r.Documents != 0 {
		t.Errorf("documents should not be reported before the first build, got %d", r.Documents)
	}
}

func TestCheck_NoSources(t *testing.T) {
	svc := New(&mockIndexChecker{ready: true}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["sources"]; ok {
		t.Error("sources check should be absent when sources is nil")
	}
}

func TestCheck_EmptyIndexIsHealthy(t *testing.T) {
	svc := New(&mockIndexChecker{ready: true, n: 0}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("an empty but built index is a valid state, got %q", r.Status)
	}
}
