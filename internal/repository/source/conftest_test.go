package source

import (
	"context"
	"testing"
	"time"

	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setFn          func(ctx context.Context, key string, value []byte) error
	incrByFn       func(ctx context.Context, key string, val int64) (int64, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	delFn          func(ctx context.Context, keys ...string) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return 1, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testUpload(id string) domsrc.Upload {
	return domsrc.Upload{
		ID:       id,
		Name:     "projects.csv",
		Template: "project",
		Format:   "csv",
		Size:     42,
		Count:    3,
		Created:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}
