package health

import "context"

// SourcePinger checks source registry availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the index has been built.
type IndexChecker interface {
	Ready() bool
	Len() int
}
