package config

// Oracle variant names selectable via scoring.oracle.
const (
	OracleHeuristic = "heuristic"
	OracleLLM       = "llm"
)

// ScoringConfig configures the pruning pipeline and oracle selection.
type ScoringConfig struct {
	// Oracle selects the scoring strategy: "heuristic" or "llm".
	// Never selected by randomness; tests substitute fixed oracles.
	Oracle string `yaml:"oracle"`

	// MinScore is the default pruning threshold (0-100).
	MinScore int `yaml:"min_score"`

	// ItemTimeout bounds a single oracle call so one hung call cannot
	// stall the whole pipeline.
	ItemTimeout string `yaml:"item_timeout"`

	// EventBuffer sizes the progress channel; the transport drains it.
	EventBuffer int `yaml:"event_buffer"`
}

func (c *ScoringConfig) applyDefaults() {
	if c.Oracle == "" {
		c.Oracle = OracleHeuristic
	}
	if c.MinScore == 0 {
		c.MinScore = 70
	}
	if c.ItemTimeout == "" {
		c.ItemTimeout = "30s"
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
}
