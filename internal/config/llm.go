package config

// LLMConfig configures the Gemini client behind the LLM-backed oracle.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`

	// MaxConcurrent caps in-flight Gemini calls process-wide. The
	// pruning pipeline is sequential on its own; this guards ad-hoc
	// callers (server handlers, future batch jobs).
	MaxConcurrent int `yaml:"max_concurrent"`
}

func (c *LLMConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
}
