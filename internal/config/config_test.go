package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, 10000, cfg.ImportMaxRows)
		assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
		assert.False(t, cfg.LLMConfigured())
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("IMPORT_MAX_ROWS", "25")
		t.Setenv("CACHE_TTL", "5m")
		t.Setenv("LLM_PROVIDER", "Ollama")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.ServerPort)
		assert.Equal(t, 25, cfg.ImportMaxRows)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, "ollama", cfg.LLMProvider)
		assert.True(t, cfg.LLMConfigured())
	})

	t.Run("Invalid Integer", func(t *testing.T) {
		t.Setenv("FOLLOWUP_BATCH_SIZE", "many")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FOLLOWUP_BATCH_SIZE")
	})
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
