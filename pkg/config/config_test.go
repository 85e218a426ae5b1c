package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9654, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ruff", cfg.LinterBin)
	assert.Equal(t, "mypy", cfg.TypeCheckerBin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TOOLBOX_PORT", "8080")
	t.Setenv("TOOLBOX_LINTER_BIN", "ruff-nightly")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "ruff-nightly", cfg.LinterBin)
}

func TestLoadExplicitEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "server.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOOLBOX_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TOOLBOX_LOG_LEVEL") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}
