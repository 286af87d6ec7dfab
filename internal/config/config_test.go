package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "qwen2.5:0.5b", cfg.Model.Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
server:
  port: 9090
model:
  base_url: http://model.internal:11434
  name: llama3:8b
  request_timeout: 30s
cache:
  driver: memory
  ttl: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://model.internal:11434", cfg.Model.BaseURL)
	assert.Equal(t, "llama3:8b", cfg.Model.Name)
	assert.Equal(t, 30*time.Second, cfg.Model.RequestTimeout)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	// Untouched sections keep defaults.
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_URL", "http://10.0.0.5:11434")
	t.Setenv("LLM_MODEL", "qwen2.5:7b")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/test.db")
	t.Setenv("SERVER_PORT", "8181")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:11434", cfg.Model.BaseURL)
	assert.Equal(t, "qwen2.5:7b", cfg.Model.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestLoad_PostgresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/retail")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://user:pass@db:5432/retail", cfg.DatabaseDSN())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad database driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"empty model url", func(c *Config) { c.Model.BaseURL = "" }},
		{"negative retries", func(c *Config) { c.Model.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
