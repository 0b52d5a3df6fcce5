package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/tabdex/internal/domain/dataset"
)

// Config holds the tabdex server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Data    DataConfig    `yaml:"data"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Sources SourcesConfig `yaml:"sources"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int  `yaml:"port"`
	ReadTimeoutSec  int  `yaml:"read_timeout_sec"`
	WriteTimeoutSec int  `yaml:"write_timeout_sec"`
	ShutdownSec     int  `yaml:"shutdown_timeout_sec"`
	MaxUploadMB     int  `yaml:"max_upload_mb"`
	ExposeErrors    bool `yaml:"expose_errors"` // include the underlying cause in error bodies
}

// DataConfig locates dataset and catalog files.
type DataConfig struct {
	Dir         string            `yaml:"dir"`
	Files       map[string]string `yaml:"files"` // dataset name -> file name
	CatalogFile string            `yaml:"catalog_file"`
	LoadWorkers int               `yaml:"load_workers"`
}

// IndexConfig holds tokenizer settings.
type IndexConfig struct {
	MaxTokenRunes int `yaml:"max_token_runes"`
	ContextDepth  int `yaml:"context_depth"`
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	DefaultLimit int  `yaml:"default_limit"`
	MaxLimit     int  `yaml:"max_limit"`
	RankByScore  bool `yaml:"rank_by_score"`
}

// SourcesConfig selects the source registry backend.
type SourcesConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// DatasetFiles returns the per-dataset file overrides.
func (c DataConfig) DatasetFiles() map[dataset.Kind]string {
	out := make(map[dataset.Kind]string, len(c.Files))
	for name, file := range c.Files {
		out[dataset.Kind(name)] = file
	}
	return out
}

// CatalogPath returns the catalog file path, resolved against the data directory.
func (c DataConfig) CatalogPath() string {
	if filepath.IsAbs(c.CatalogFile) {
		return c.CatalogFile
	}
	return filepath.Join(c.Dir, c.CatalogFile)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod, test).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 32
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.CatalogFile == "" {
		c.Data.CatalogFile = "catalog.csv"
	}
	if c.Data.LoadWorkers <= 0 {
		c.Data.LoadWorkers = 4
	}
	if c.Index.MaxTokenRunes <= 0 {
		c.Index.MaxTokenRunes = 32
	}
	if c.Index.ContextDepth <= 0 {
		c.Index.ContextDepth = 2
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Sources.Driver == "" {
		c.Sources.Driver = "memory"
	}
	if c.Sources.ReadinessTimeout <= 0 {
		c.Sources.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	for name := range c.Data.Files {
		if _, err := dataset.ParseKind(name); err != nil {
			return fmt.Errorf("data.files: %w", err)
		}
	}
	switch c.Sources.Driver {
	case "memory":
	case "redis":
		if len(c.Sources.Addrs) == 0 {
			return fmt.Errorf("sources.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("sources.driver must be \"memory\" or \"redis\", got %q", c.Sources.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
