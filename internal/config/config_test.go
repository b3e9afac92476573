package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3:8b", cfg.Ollama.Model)
	assert.Equal(t, []string{"llama3:8b", "llama2:7b", "mistral:7b", "codellama:7b"}, cfg.Ollama.FallbackModels)
	assert.Equal(t, int64(10*1024*1024), cfg.Ingest.MaxPDFBytes)
	assert.Equal(t, 10, cfg.Ingest.MinContentLength)
	assert.Equal(t, 50_000, cfg.Ingest.MaxContentLength)
	assert.Equal(t, 10*time.Second, cfg.Ingest.FetchTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Empty(t, cfg.Admin.APIKey)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
ollama:
  model: mistral:7b
admin:
  api_key: secret
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mistral:7b", cfg.Ollama.Model)
	assert.Equal(t, "secret", cfg.Admin.APIKey)
	// Unset keys keep their defaults.
	assert.Equal(t, "./data/botdock.db", cfg.Database.Path)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 70000
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
