package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Quiz.DefaultSampleSize)
	assert.Equal(t, 50, cfg.Quiz.MaxSampleSize)
	assert.True(t, cfg.Quiz.TrustClientTiming)
	assert.Equal(t, 5*time.Minute, cfg.Quiz.PoolCacheTTL)
	assert.Equal(t, 600, cfg.RateLimit.MaxRequests)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
database:
  driver: sqlite
  path: test.db
quiz:
  default_sample_size: 5
  max_sample_size: 20
  trust_client_timing: false
  pool_cache_ttl: 30s
cors:
  allowed_origins:
    - http://a.example
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SKILL_ASSESS_SERVER_PORT", "7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Quiz.DefaultSampleSize)
	assert.False(t, cfg.Quiz.TrustClientTiming)
	assert.Equal(t, 30*time.Second, cfg.Quiz.PoolCacheTTL)
	assert.Equal(t, []string{"http://a.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{Mode: "debug"},
			Database:  DatabaseConfig{Driver: "postgres"},
			RateLimit: RateLimitConfig{MaxRequests: 10, WindowMinutes: 1},
			Quiz:      QuizConfig{DefaultSampleSize: 10, MaxSampleSize: 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"short secret in release", func(c *Config) { c.Server.Mode = "release"; c.JWT.Secret = "short" }, true},
		{"long secret in release", func(c *Config) {
			c.Server.Mode = "release"
			c.JWT.Secret = "0123456789abcdef0123456789abcdef"
		}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"zero sample", func(c *Config) { c.Quiz.DefaultSampleSize = 0 }, true},
		{"max below default", func(c *Config) { c.Quiz.MaxSampleSize = 5 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit.MaxRequests = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
