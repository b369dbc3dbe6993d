package pocketnavi

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver string // "sqlite", "rest" or "memory"

	sqlitePath string
	dataset    string

	restURL    string
	restAPIKey string
	restRPC    string

	strategy        Strategy
	candidateWindow int
	primaryTimeout  time.Duration
	budget          time.Duration

	logger     *slog.Logger
	zapLogger  *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite opens the catalog database at path. Pending migrations are applied.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.sqlitePath = path
	})
}

// WithREST reads the catalog through a PostgREST-style data API.
// rpc names the ranked search function; empty disables ranked search.
func WithREST(url, apiKey, rpc string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "rest"
		c.restURL = url
		c.restAPIKey = apiKey
		c.restRPC = rpc
	})
}

// WithDataset loads a JSON dataset into memory.
func WithDataset(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.dataset = path
	})
}

// WithStrategy sets the multi-term strategy. Default: StrictAnd.
func WithStrategy(s Strategy) Option {
	return optionFunc(func(c *clientConfig) {
		c.strategy = s
	})
}

// WithCandidateWindow caps how many candidates a term contributes. Default: 50.
func WithCandidateWindow(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateWindow = n
	})
}

// WithTimeouts sets the primary query timeout and the budget of
// multi-call searches. Zero keeps the default.
func WithTimeouts(primary, budget time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.primaryTimeout = primary
		c.budget = budget
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithZapLogger routes the search engine's own logs (fallbacks, skipped
// calls, exhausted budgets, failed architect lookups) to l. Default: discarded.
func WithZapLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.zapLogger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
