// internal/config/config_test.go
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Overdue.ThresholdDays)
	assert.Equal(t, config.Duration(time.Hour), cfg.Overdue.Interval)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
addr: ":9090"
database_url: "postgres://localhost/libris"
log:
  level: debug
overdue:
  threshold_days: 7
  interval: 30m
smtp:
  addr: "mail:25"
  from: "library@example.com"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost/libris", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Overdue.ThresholdDays)
	assert.Equal(t, config.Duration(30*time.Minute), cfg.Overdue.Interval)
	assert.Equal(t, "mail:25", cfg.SMTP.Addr)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`addr: ":9090"`), 0o600))

	t.Setenv("ADDR", ":7070")
	t.Setenv("DATABASE_URL", "postgres://env/libris")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "postgres://env/libris", cfg.DatabaseURL)
}
