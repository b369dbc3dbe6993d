package strategy

// Name selects the multi-term AND combinator.
type Name string

// Strategy names.
const (
	// StrictAnd filters a capped window of first-term matches.
	StrictAnd Name = "strict_and"
	// FastAnd fans the windowed match out over every term and filters the union.
	FastAnd Name = "fast_and"
)

// IsValid checks if the name is one of the supported values.
func (n Name) IsValid() bool {
	return n == StrictAnd || n == FastAnd
}

// Path records which branch of the engine produced a response.
type Path string

// Engine paths, used in logs, metrics and responses.
const (
	PathEmpty    Path = "empty"
	PathRanked   Path = "ranked"
	PathMatch    Path = "match"
	PathFallback Path = "fallback"
	PathAnd      Path = "and"
	PathFailed   Path = "failed"
)
