package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.Equal(t, "http://localhost:8001", cfg.ML.BaseURL)
	assert.Equal(t, 3, cfg.ML.MaxAttempts)
	assert.Equal(t, time.Second, cfg.ML.RetryDelay())
	assert.Equal(t, []string{
		"/ml/models/predict/",
		"/ml/predict/robust/",
		"/api/ml/predict",
	}, cfg.ML.FallbackPaths)
	assert.Equal(t, "sqlite", cfg.Registry.Driver)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
api:
  base_url: https://claims.example.com/api
ml:
  base_url: https://ml.example.com
  api_key: test-key
  max_attempts: 5
registry:
  driver: postgres
  dsn: postgres://localhost/claims
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://claims.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "https://ml.example.com", cfg.ML.BaseURL)
	assert.Equal(t, "test-key", cfg.ML.APIKey)
	assert.Equal(t, 5, cfg.ML.MaxAttempts)
	assert.Equal(t, "postgres", cfg.Registry.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset sections keep defaults.
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}
