package tabdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	dataDir     string
	files       map[string]string
	catalogFile string
	loadWorkers int

	driver   string // "memory" or "redis"
	addrs    []string
	password string

	maxTokenRunes int
	contextDepth  int
	rankByScore   bool
	skipBuild     bool
	clock         func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDataDir sets the directory holding the dataset and catalog files.
// Default: "data".
func WithDataDir(dir string) Option {
	return optionFunc(func(c *engineConfig) {
		c.dataDir = dir
	})
}

// WithDatasetFile overrides the file name of one dataset ("poverty", "labor",
// "gdp" or "demographics"). The default is "<dataset>.csv".
func WithDatasetFile(dataset, file string) Option {
	return optionFunc(func(c *engineConfig) {
		if c.files == nil {
			c.files = make(map[string]string)
		}
		c.files[dataset] = file
	})
}

// WithCatalogFile sets the catalog file name inside the data directory.
// Default: "catalog.csv".
func WithCatalogFile(name string) Option {
	return optionFunc(func(c *engineConfig) {
		c.catalogFile = name
	})
}

// WithLoadWorkers sets how many dataset loaders run concurrently.
func WithLoadWorkers(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.loadWorkers = n
	})
}

// WithRedis keeps the upload registry in Redis instead of process memory,
// so uploads survive a restart.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *engineConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithIndex tunes the prefix index: the longest indexed token prefix in
// runes and how far apart two tokens may be to count as a context pair.
// Zero keeps the default (32 and 2).
func WithIndex(maxTokenRunes, contextDepth int) Option {
	return optionFunc(func(c *engineConfig) {
		c.maxTokenRunes = maxTokenRunes
		c.contextDepth = contextDepth
	})
}

// WithRankByScore orders results by field weight and proximity instead of
// field priority then insertion order.
func WithRankByScore() Option {
	return optionFunc(func(c *engineConfig) {
		c.rankByScore = true
	})
}

// WithoutInitialBuild makes New return before the first Reindex.
// Search fails with ErrIndexUnavailable until Reindex is called.
func WithoutInitialBuild() Option {
	return optionFunc(func(c *engineConfig) {
		c.skipBuild = true
	})
}

// WithClock sets the fallback timestamp source for records without a date.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *engineConfig) {
		c.clock = now
	})
}

// WithLogger enables structured logging for engine operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithPrometheus registers engine metrics (operation counts, durations and
// index size) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *engineConfig) {
		c.metricsReg = reg
	})
}
