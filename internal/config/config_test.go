package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "scout.db", cfg.Store.Path)
	assert.Equal(t, "https://nashanyanya.ru", cfg.Site.BaseURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, ".scout-state.json", cfg.Browser.StatePath)
	assert.Equal(t, 30, cfg.Browser.NavTimeoutSecs)
	assert.Equal(t, 20, cfg.Browser.NavPerMinute)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 1024, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 60, cfg.Anthropic.TimeoutSecs)
	assert.Equal(t, 48, cfg.Scan.CutoffHours)
	assert.Equal(t, 20, cfg.Scan.MaxPages)
	assert.True(t, cfg.Commute.Enabled)
	assert.Equal(t, "job.yaml", cfg.Job.SpecPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  path: candidates.xlsx
site:
  base_url: https://staging.nashanyanya.ru
scan:
  cutoff_hours: 24
  max_pages: 5
commute:
  enabled: false
  origin: "Москва, Тверская 1"
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "candidates.xlsx", cfg.Store.Path)
	assert.Equal(t, "https://staging.nashanyanya.ru", cfg.Site.BaseURL)
	assert.Equal(t, 24, cfg.Scan.CutoffHours)
	assert.Equal(t, 5, cfg.Scan.MaxPages)
	assert.False(t, cfg.Commute.Enabled)
	assert.Equal(t, "Москва, Тверская 1", cfg.Commute.Origin)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Unset sections keep defaults.
	assert.Equal(t, 20, cfg.Browser.NavPerMinute)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("SCOUT_ANTHROPIC_KEY", "sk-test")
	t.Setenv("SCOUT_SITE_PASSWORD", "hunter2")
	t.Setenv("SCOUT_SCAN_QUERY", "nyanya-s-prozhivaniem")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "hunter2", cfg.Site.Password)
	assert.Equal(t, "nyanya-s-prozhivaniem", cfg.Scan.Query)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
