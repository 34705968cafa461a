package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_LLM(t *testing.T) {
	t.Run("GEMINI_API_KEY sets the key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gem-key")
		t.Setenv("GOOGLE_API_KEY", "")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	})

	t.Run("GOOGLE_API_KEY is a fallback, not an override", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gem-key")
		t.Setenv("GOOGLE_API_KEY", "goog-key")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	})

	t.Run("GOOGLE_API_KEY used when nothing else set", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "goog-key")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "goog-key", cfg.LLM.APIKey)
	})
}

func TestEnvOverrides_MetaAndServer(t *testing.T) {
	t.Setenv("META_ACCESS_TOKEN", "meta-token")
	t.Setenv("ADFORGE_ADDR", ":9999")
	t.Setenv("ADFORGE_DB", "/tmp/x.db")

	cfg := Default()
	cfg.applyEnvOverrides()

	assert.Equal(t, "meta-token", cfg.Meta.AccessToken)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
}
