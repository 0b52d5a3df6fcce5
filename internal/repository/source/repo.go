package source

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/tabdex/internal/db"
	"github.com/kailas-cloud/tabdex/internal/domain"
	domsrc "github.com/kailas-cloud/tabdex/internal/domain/source"
)

var (
	metaPrefix = domain.KeyPrefix + "source:meta:"
	dataPrefix = domain.KeyPrefix + "source:data:"
	seqKey     = domain.KeyPrefix + "source:seq"
)

// store is the consumer interface for the source registry (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
}

// Repo persists accepted uploads and their raw bytes for re-index replay.
type Repo struct {
	store store
}

// New creates a source registry over a key-value store.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save assigns the next sequence number and stores metadata and content.
// Content is written before metadata so a listed upload always has data.
func (r *Repo) Save(ctx context.Context, u domsrc.Upload, data []byte) (domsrc.Upload, error) {
	if err := u.Validate(); err != nil {
		return domsrc.Upload{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	seq, err := r.store.IncrBy(ctx, seqKey, 1)
	if err != nil {
		return domsrc.Upload{}, fmt.Errorf("next source seq: %w", err)
	}
	u.Seq = seq

	if err := r.store.Set(ctx, dataPrefix+u.ID, data); err != nil {
		return domsrc.Upload{}, fmt.Errorf("store source data %s: %w", u.ID, err)
	}
	if err := r.store.HSet(ctx, metaPrefix+u.ID, uploadToHash(u)); err != nil {
		return domsrc.Upload{}, fmt.Errorf("store source meta %s: %w", u.ID, err)
	}
	return u, nil
}

// List returns all uploads in replay order.
func (r *Repo) List(ctx context.Context) ([]domsrc.Upload, error) {
	keys, err := r.store.Scan(ctx, metaPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	if len(keys) == 0 {
		return []domsrc.Upload{}, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	out := make([]domsrc.Upload, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		u, err := uploadFromHash(h)
		if err != nil {
			return nil, fmt.Errorf("decode source %s: %w", keys[i], err)
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Data returns the raw bytes of an upload.
func (r *Repo) Data(ctx context.Context, id string) ([]byte, error) {
	data, err := r.store.Get(ctx, dataPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get source data %s: %w", id, err)
	}
	return data, nil
}

// Delete removes an upload and its content.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, metaPrefix+id, dataPrefix+id); err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}
	return nil
}
