package ontology

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// IDGenerator produces process-unique document ids.
type IDGenerator interface {
	Next() string
}

// ULIDGenerator issues ULIDs: a millisecond timestamp seed plus monotonic
// entropy that increments within the same millisecond. Safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a generator reading randomness from r
// (crypto/rand when nil).
func NewULIDGenerator(r io.Reader) *ULIDGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &ULIDGenerator{entropy: ulid.Monotonic(r, 0)}
}

// Next returns a new lowercase ULID.
func (g *ULIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Now(), g.entropy).String())
}
