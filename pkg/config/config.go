// Package config loads server configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// envPrefix namespaces the server's environment variables (TOOLBOX_PORT etc).
const envPrefix = "toolbox"

// Server holds everything configurable outside the transport flag. Docker
// daemon connection details stay with the standard DOCKER_* variables and are
// consumed by the Engine API client directly.
type Server struct {
	Host           string `envconfig:"HOST" default:"0.0.0.0"`
	Port           int    `envconfig:"PORT" default:"9654"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LinterBin      string `envconfig:"LINTER_BIN" default:"ruff"`
	TypeCheckerBin string `envconfig:"TYPE_CHECKER_BIN" default:"mypy"`
}

// Load reads an optional .env file and then the process environment. A
// missing default .env file is fine; a missing explicitly named one is not.
func Load(envFile string) (Server, error) {
	var cfg Server

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, errors.Wrapf(err, "failed to load env file %s", envFile)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return cfg, errors.Wrap(err, "failed to load .env")
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to process environment")
	}
	return cfg, nil
}
