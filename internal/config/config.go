// Package config loads and validates adforge configuration from
// .forge/config.yaml, with environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all adforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Workspace root; defaults to the current directory.
	Workspace string `yaml:"workspace"`

	// Database path for the sqlite store.
	DatabasePath string `yaml:"database_path"`

	// LLM configuration for the LLM-backed oracle.
	LLM LLMConfig `yaml:"llm"`

	// Scoring pipeline configuration.
	Scoring ScoringConfig `yaml:"scoring"`

	// TTL cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// Meta Graph API configuration.
	Meta MetaConfig `yaml:"meta"`

	// HTTP/SSE server configuration.
	Server ServerConfig `yaml:"server"`

	// Logging configuration (mirrored by internal/logging).
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP/SSE transport.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfigPath returns the default path to .forge/config.yaml
// under the given workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".forge", "config.yaml")
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	cfg := &Config{
		Name:         "adforge",
		Workspace:    ".",
		DatabasePath: filepath.Join(".forge", "adforge.db"),
	}
	cfg.LLM.applyDefaults()
	cfg.Scoring.applyDefaults()
	cfg.Cache.applyDefaults()
	cfg.Meta.applyDefaults()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8745"
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = "10s"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg
}

// Load reads config from the given path, applies defaults for missing
// fields, then applies environment overrides. A missing file is not an
// error: defaults plus env overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Re-apply defaults for fields the file left zero-valued.
	cfg.LLM.applyDefaults()
	cfg.Scoring.applyDefaults()
	cfg.Cache.applyDefaults()
	cfg.Meta.applyDefaults()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8745"
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values for
// secrets, so config files never need to carry keys.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if token := os.Getenv("META_ACCESS_TOKEN"); token != "" {
		c.Meta.AccessToken = token
	}
	if addr := os.Getenv("ADFORGE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if db := os.Getenv("ADFORGE_DB"); db != "" {
		c.DatabasePath = db
	}
}

// Validate checks cross-field constraints that defaults cannot fix.
func (c *Config) Validate() error {
	if c.Scoring.Oracle == OracleLLM && c.LLM.APIKey == "" {
		return fmt.Errorf("scoring.oracle is %q but no LLM API key is configured (set GEMINI_API_KEY)", OracleLLM)
	}
	if c.Scoring.MinScore < 0 || c.Scoring.MinScore > 100 {
		return fmt.Errorf("scoring.min_score must be within [0,100], got %d", c.Scoring.MinScore)
	}
	return nil
}

// ParseDuration parses a duration string with a fallback default.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
