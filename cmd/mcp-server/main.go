// Command mcp-server runs the development toolbox MCP server: the code
// analysis and docker control registries mounted under one HTTP listener,
// over SSE (default) or streamable HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devtoolbox/devtoolbox-mcp/pkg/analysis"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/config"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/dockerctl"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/app"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/lifecycle"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/registry"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/runner"
)

// Build-time variables set via ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"
	// GitCommit is the git commit SHA at build time
	GitCommit = "unknown"
	// BuildTime is the time of the build
	BuildTime = "unknown"
)

const (
	codeAnalysisPrefix  = "/code"
	dockerControlPrefix = "/docker"

	shutdownTimeout = 10 * time.Second
)

// FlagConfig holds all command line flags
type FlagConfig struct {
	transport *string
	httpAddr  *string
	httpPort  *int
	logLevel  *string
	envFile   *string
	version   *bool
}

// parseFlags parses command line flags and returns configuration
func parseFlags() *FlagConfig {
	flags := &FlagConfig{
		transport: flag.String("transport", string(app.TransportSSE), "Transport to use (sse, stream-http)"),
		httpAddr:  flag.String("http-addr", "", "HTTP listen address"),
		httpPort:  flag.Int("http-port", 0, "HTTP listen port"),
		logLevel:  flag.String("log-level", "", "Log level (debug, info, warn, error)"),
		envFile:   flag.String("env-file", "", "Path to an env file to load"),
		version:   flag.Bool("version", false, "Show version information"),
	}
	flag.Parse()
	return flags
}

func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}

func main() {
	flags := parseFlags()

	if *flags.version {
		log.Info().Str("version", getVersion()).Msg("Development Toolbox MCP Server version")
		os.Exit(0)
	}

	cfg, err := config.Load(*flags.envFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	applyFlagOverrides(&cfg, flags)

	mode, err := app.ParseTransport(*flags.transport)
	if err != nil {
		log.Error().Err(err).Msg("Invalid transport flag")
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	if err := run(mode, cfg, logger); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

// applyFlagOverrides lets flags win over environment configuration.
func applyFlagOverrides(cfg *config.Server, flags *FlagConfig) {
	if *flags.httpAddr != "" {
		cfg.Host = *flags.httpAddr
	}
	if *flags.httpPort != 0 {
		cfg.Port = *flags.httpPort
	}
	if *flags.logLevel != "" {
		cfg.LogLevel = *flags.logLevel
	}
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		slogLevel = slog.LevelWarn
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		slogLevel = slog.LevelError
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		slogLevel = slog.LevelInfo
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}

func run(mode app.Transport, cfg config.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The daemon connection is attempted once; when it fails the docker
	// control tools serve a fixed error payload until the process restarts.
	daemon, err := dockerctl.Connect(ctx, logger)
	if err != nil {
		logger.Warn("Docker not available", slog.String("error", err.Error()))
		daemon = nil
	}

	codeReg, dockerReg, err := buildRegistries(cfg, daemon, logger)
	if err != nil {
		return err
	}

	application, err := app.New(mode, logger,
		app.Mount{Prefix: codeAnalysisPrefix, Registry: codeReg},
		app.Mount{Prefix: dockerControlPrefix, Registry: dockerReg},
	)
	if err != nil {
		return errors.Wrap(err, "failed to build application")
	}

	manager := lifecycle.NewManager(logger, application.SessionContexts()...)
	if err := manager.Start(ctx); err != nil {
		return errors.Wrap(err, "startup failed")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: application.Handler(),
	}

	serveErrCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			slog.String("transport", string(mode)),
			slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	var serveErr error
	select {
	case serveErr = <-serveErrCh:
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			serveErr = errors.Wrap(err, "http server shutdown")
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.Close(closeCtx); err != nil {
		if serveErr == nil {
			serveErr = err
		} else {
			logger.Error("Failed to close session contexts", slog.String("error", err.Error()))
		}
	}
	return serveErr
}

func buildRegistries(cfg config.Server, daemon dockerctl.DaemonClient, logger *slog.Logger) (*registry.Registry, *registry.Registry, error) {
	analysisCfg := analysis.DefaultConfig()
	analysisCfg.LinterBin = cfg.LinterBin
	analysisCfg.TypeCheckerBin = cfg.TypeCheckerBin

	codeBuilder := registry.NewBuilder("CodeAnalysisServer", Version, logger)
	analysis.NewToolSet(analysisCfg, runner.NewExecRunner(logger), logger).Register(codeBuilder)
	codeReg, err := codeBuilder.Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build code analysis registry")
	}

	dockerBuilder := registry.NewBuilder("DockerControlServer", Version, logger)
	dockerctl.NewToolSet(daemon, logger).Register(dockerBuilder)
	dockerReg, err := dockerBuilder.Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build docker control registry")
	}

	return codeReg, dockerReg, nil
}
