package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the pocketnavi configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json or console (default: determined by env)
	Output string `yaml:"output"` // zap sink path (default: stderr)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverREST   = "rest"
	DriverMemory = "memory"
)

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver           string       `yaml:"driver"` // sqlite, rest, memory (default: sqlite)
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
	SQLite           SQLiteConfig `yaml:"sqlite"`
	REST             RESTConfig   `yaml:"rest"`
	Memory           MemoryConfig `yaml:"memory"`
}

// SQLiteConfig holds the embedded database settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RESTConfig holds the HTTP data API settings.
type RESTConfig struct {
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	SearchRPC  string        `yaml:"search_rpc"` // empty = no ranked search
	TimeoutSec int           `yaml:"timeout_sec"`
	RatePerSec float64       `yaml:"rate_per_sec"` // 0 = unlimited
	Burst      int           `yaml:"burst"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings of the REST store.
type BreakerConfig struct {
	MaxFailures    uint32 `yaml:"max_failures"`
	OpenTimeoutSec int    `yaml:"open_timeout_sec"`
}

// MemoryConfig holds the in-process store settings.
type MemoryConfig struct {
	Dataset string `yaml:"dataset"`
}

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig holds the slug lookup cache settings.
type CacheConfig struct {
	Driver string      `yaml:"driver"` // none, memory, redis (default: memory)
	TTLSec int         `yaml:"ttl_sec"`
	Size   int         `yaml:"size"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis/Valkey connection settings.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// SearchConfig tunes the search engine.
type SearchConfig struct {
	Strategy              string `yaml:"strategy"` // strict_and, fast_and (default: strict_and)
	PageSize              int    `yaml:"page_size"`
	CandidateWindow       int    `yaml:"candidate_window"`
	PrimaryTimeoutMS      int    `yaml:"primary_timeout_ms"`
	FallbackCallTimeoutMS int    `yaml:"fallback_call_timeout_ms"`
	BudgetMS              int    `yaml:"budget_ms"`
	Concurrency           int    `yaml:"concurrency"`
	PreferRanked          *bool  `yaml:"prefer_ranked"` // default: true
	ResolverPoolSize      int    `yaml:"resolver_pool_size"`
}

// PrimaryTimeout returns the primary query timeout.
func (s SearchConfig) PrimaryTimeout() time.Duration {
	return time.Duration(s.PrimaryTimeoutMS) * time.Millisecond
}

// FallbackCallTimeout returns the per-call timeout of fallback and relation calls.
func (s SearchConfig) FallbackCallTimeout() time.Duration {
	return time.Duration(s.FallbackCallTimeoutMS) * time.Millisecond
}

// Budget returns the overall budget of multi-call strategies.
func (s SearchConfig) Budget() time.Duration {
	return time.Duration(s.BudgetMS) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in a YAML document, applies defaults and
// validates the result.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "data/pocketnavi.db"
	}
	if c.Store.REST.TimeoutSec <= 0 {
		c.Store.REST.TimeoutSec = 30
	}
	if c.Store.REST.Breaker.MaxFailures == 0 {
		c.Store.REST.Breaker.MaxFailures = 5
	}
	if c.Store.REST.Breaker.OpenTimeoutSec <= 0 {
		c.Store.REST.Breaker.OpenTimeoutSec = 30
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheMemory
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 1024
	}

	if c.Search.Strategy == "" {
		c.Search.Strategy = "strict_and"
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if c.Search.CandidateWindow <= 0 {
		c.Search.CandidateWindow = 50
	}
	if c.Search.PrimaryTimeoutMS <= 0 {
		c.Search.PrimaryTimeoutMS = 30_000
	}
	if c.Search.FallbackCallTimeoutMS <= 0 {
		c.Search.FallbackCallTimeoutMS = 5_000
	}
	if c.Search.BudgetMS <= 0 {
		c.Search.BudgetMS = 20_000
	}
	if c.Search.Concurrency <= 0 {
		c.Search.Concurrency = 6
	}
	if c.Search.PreferRanked == nil {
		preferRanked := true
		c.Search.PreferRanked = &preferRanked
	}
	if c.Search.ResolverPoolSize <= 0 {
		c.Search.ResolverPoolSize = 16
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Store.Driver {
	case DriverSQLite:
	case DriverREST:
		if c.Store.REST.URL == "" {
			return fmt.Errorf("store.rest.url is required for the rest driver")
		}
		if c.Store.REST.RatePerSec < 0 {
			return fmt.Errorf("store.rest.rate_per_sec must not be negative")
		}
	case DriverMemory:
		if c.Store.Memory.Dataset == "" {
			return fmt.Errorf("store.memory.dataset is required for the memory driver")
		}
	default:
		return fmt.Errorf("store.driver must be sqlite, rest or memory, got %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("cache.redis.addrs is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.driver must be none, memory or redis, got %q", c.Cache.Driver)
	}

	switch c.Search.Strategy {
	case "strict_and", "fast_and":
	default:
		return fmt.Errorf("search.strategy must be \"strict_and\" or \"fast_and\", got %q", c.Search.Strategy)
	}
	if c.Search.FallbackCallTimeoutMS > c.Search.BudgetMS {
		return fmt.Errorf("search.fallback_call_timeout_ms must not exceed search.budget_ms")
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
