package search

import (
	"time"

	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
)

// Defaults applied to zero Config fields.
const (
	DefaultCandidateWindow     = 50
	DefaultPrimaryTimeout      = 30 * time.Second
	DefaultFallbackCallTimeout = 5 * time.Second
	DefaultBudget              = 20 * time.Second
	DefaultConcurrency         = 6
)

// Config tunes the engine. It is a plain value injected at construction.
type Config struct {
	Strategy            strategy.Name
	PageSize            int
	CandidateWindow     int
	PrimaryTimeout      time.Duration
	FallbackCallTimeout time.Duration
	// Budget bounds multi-term strategies and the fallback chain as a whole.
	Budget       time.Duration
	Concurrency  int
	PreferRanked bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:            strategy.StrictAnd,
		PageSize:            page.DefaultSize,
		CandidateWindow:     DefaultCandidateWindow,
		PrimaryTimeout:      DefaultPrimaryTimeout,
		FallbackCallTimeout: DefaultFallbackCallTimeout,
		Budget:              DefaultBudget,
		Concurrency:         DefaultConcurrency,
		PreferRanked:        true,
	}
}

// withDefaults fills zero fields. PreferRanked is taken as given.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !c.Strategy.IsValid() {
		c.Strategy = d.Strategy
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.CandidateWindow <= 0 {
		c.CandidateWindow = d.CandidateWindow
	}
	if c.PrimaryTimeout <= 0 {
		c.PrimaryTimeout = d.PrimaryTimeout
	}
	if c.FallbackCallTimeout <= 0 {
		c.FallbackCallTimeout = d.FallbackCallTimeout
	}
	if c.Budget <= 0 {
		c.Budget = d.Budget
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	return c
}
