package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devtoolbox/devtoolbox-mcp/pkg/config"
)

func TestApplyFlagOverrides(t *testing.T) {
	addr := "127.0.0.1"
	port := 8080
	level := "debug"
	empty := ""
	zero := 0

	cfg := config.Server{Host: "0.0.0.0", Port: 9654, LogLevel: "info"}
	applyFlagOverrides(&cfg, &FlagConfig{httpAddr: &addr, httpPort: &port, logLevel: &level})
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg = config.Server{Host: "0.0.0.0", Port: 9654, LogLevel: "info"}
	applyFlagOverrides(&cfg, &FlagConfig{httpAddr: &empty, httpPort: &zero, logLevel: &empty})
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9654, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestGetVersion(t *testing.T) {
	assert.Contains(t, getVersion(), Version)
	assert.Contains(t, getVersion(), GitCommit)
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		assert.NotNil(t, newLogger(level))
	}
}
