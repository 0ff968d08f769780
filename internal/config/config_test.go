package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "auto", cfg.Crawl.Engine)
	assert.Equal(t, "chromium", cfg.Crawl.Browser)
	assert.Equal(t, 20, cfg.Crawl.MaxResultsPerQuery)
	assert.Equal(t, 60, cfg.Crawl.MaxResultsPerAgent)
	assert.Equal(t, 1200, cfg.Crawl.DelayMinMs)
	assert.Equal(t, 3500, cfg.Crawl.DelayMaxMs)
	assert.Equal(t, "https://serpapi.com", cfg.SerpAPI.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CREATORSCOUT_CRAWL_ENGINE", "duckduckgo")
	t.Setenv("CREATORSCOUT_SERPAPI_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "duckduckgo", cfg.Crawl.Engine)
	assert.Equal(t, "test-key", cfg.SerpAPI.Key)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}

	assert.Error(t, cfg.Validate("store"))
	assert.Error(t, cfg.Validate("serpapi"))

	cfg.Store.DatabaseURL = "postgres://localhost/creatorscout"
	cfg.SerpAPI.Key = "k"
	assert.NoError(t, cfg.Validate("store"))
	assert.NoError(t, cfg.Validate("serpapi"))
	assert.NoError(t, cfg.Validate("unknown"))
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
