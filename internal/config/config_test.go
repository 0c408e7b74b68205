package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}))
	cfg.Sanitize()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, 20*time.Second, cfg.ExtractionTimeout)
	assert.Equal(t, 300*time.Second, cfg.TrackRequestTimeout)
	assert.Equal(t, 8000, cfg.MaxPromptChars)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.AIEnabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "host=localhost user=postgres password=password dbname=jobtracker port=5432 sslmode=disable", cfg.Database.DSN())
}

func TestParseOverrides(t *testing.T) {
	var cfg Config
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"GEMINI_API_KEY":      " gem-key ",
		"BROWSERLESS_API_KEY": "bl-key",
		"DB_HOST":             "db",
		"DB_PORT":             "6543",
		"REDIS_ADDR":          "localhost:6379",
		"CORS_ALLOW_ORIGINS":  "chrome-extension://abc,https://jacker.example",
	}}))
	cfg.Sanitize()

	assert.Equal(t, "gem-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.AIEnabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"chrome-extension://abc", "https://jacker.example"}, cfg.CORSAllowOrigins)
}

func TestSanitizeClampsTimeouts(t *testing.T) {
	cfg := Config{
		ScrapeTimeout:       time.Millisecond,
		ExtractionTimeout:   0,
		TrackRequestTimeout: time.Second,
		MaxPromptChars:      10,
		BrowserlessEndpoint: " wss://chrome.example/? ",
	}
	cfg.Sanitize()

	assert.Equal(t, minScrapeTimeout, cfg.ScrapeTimeout)
	assert.Equal(t, minExtractionTimeout, cfg.ExtractionTimeout)
	assert.Equal(t, minScrapeTimeout+minExtractionTimeout, cfg.TrackRequestTimeout)
	assert.Equal(t, minPromptChars, cfg.MaxPromptChars)
	assert.Equal(t, "wss://chrome.example", cfg.BrowserlessEndpoint)
	assert.Equal(t, 24*time.Hour, cfg.ExtractionCacheTTL)
}

func TestSanitizeTrimsCORSOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"space after comma", "https://a.example, https://b.example", []string{"https://a.example", "https://b.example"}},
		{"trailing comma", "chrome-extension://abc,", []string{"chrome-extension://abc"}},
		{"only blanks", " , ", []string{"*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
				"CORS_ALLOW_ORIGINS": tt.raw,
			}}))
			cfg.Sanitize()
			assert.Equal(t, tt.want, cfg.CORSAllowOrigins)
		})
	}
}
