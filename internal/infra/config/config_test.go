package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"rag-gateway/internal/infra/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "9020", cfg.Port)
	assert.Equal(t, "duckduckgo", cfg.SearchEngine)
	assert.Equal(t, 0.3, cfg.DefaultThreshold)
	assert.Equal(t, 5, cfg.DefaultLimit)
	assert.Equal(t, 30, cfg.QueryCacheTTLMin)
	assert.Equal(t, 60, cfg.ContentCacheTTLMin)
	assert.Equal(t, 0.4, cfg.WebSupplementRatio)
	assert.False(t, cfg.OTelLogEnabled)
}

func TestLoad_OTelLogFlag(t *testing.T) {
	t.Setenv("LOG_OTEL_ENABLED", "true")

	cfg := config.Load()
	assert.True(t, cfg.OTelLogEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RAG_DEFAULT_THRESHOLD", "0.45")
	t.Setenv("RAG_DEFAULT_LIMIT", "8")
	t.Setenv("SEARCH_ENGINE", "brave")

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.45, cfg.DefaultThreshold)
	assert.Equal(t, 8, cfg.DefaultLimit)
	assert.Equal(t, "brave", cfg.SearchEngine)
}

func TestLoad_SecretFromFile(t *testing.T) {
	dir := t.TempDir()
	secretFile := filepath.Join(dir, "odds_key")
	err := os.WriteFile(secretFile, []byte("key-from-file\n"), 0o600)
	assert.NoError(t, err)

	t.Setenv("THE_ODDS_API_KEY_FILE", secretFile)

	cfg := config.Load()
	assert.Equal(t, "key-from-file", cfg.OddsAPIKey)
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	t.Setenv("RAG_DEFAULT_LIMIT", "not-a-number")

	cfg := config.Load()
	assert.Equal(t, 5, cfg.DefaultLimit)
}
