// Package app assembles the composite HTTP application: each tool registry is
// wrapped in a transport adapter and mounted under its own path prefix on one
// listener. The transport is chosen once at startup and fixed for the process
// lifetime.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/lifecycle"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/registry"
)

// Transport selects the wire protocol for every mounted registry.
type Transport string

const (
	// TransportSSE is the default: a long-lived server-initiated event
	// channel per client, with request/response pairs correlated inside it.
	TransportSSE Transport = "sse"
	// TransportStreamHTTP serves each call as a discrete HTTP exchange,
	// session-correlated, capable of streaming in both directions.
	TransportStreamHTTP Transport = "stream-http"
)

// ParseTransport validates a transport flag value.
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TransportSSE, TransportStreamHTTP:
		return Transport(s), nil
	default:
		return "", errors.Errorf("unknown transport %q (expected %q or %q)", s, TransportSSE, TransportStreamHTTP)
	}
}

// Mount binds one registry to a path prefix.
type Mount struct {
	Prefix   string
	Registry *registry.Registry
}

// App is the composite HTTP application. Requests outside every mounted
// prefix are not handled.
type App struct {
	mode     Transport
	router   *chi.Mux
	contexts []lifecycle.Context
}

// New builds the application for the chosen transport. In streamable HTTP
// mode each mount contributes a session context; the caller hands those to a
// lifecycle.Manager. In SSE mode the adapters manage their own per-connection
// lifetime and no contexts are produced.
func New(mode Transport, logger *slog.Logger, mounts ...Mount) (*App, error) {
	if len(mounts) == 0 {
		return nil, errors.New("at least one mount is required")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	a := &App{mode: mode, router: router}
	seen := make(map[string]struct{})
	for _, m := range mounts {
		if m.Prefix == "" || m.Prefix[0] != '/' || m.Prefix == "/" {
			return nil, errors.Errorf("invalid mount prefix %q", m.Prefix)
		}
		if _, dup := seen[m.Prefix]; dup {
			return nil, errors.Errorf("mount prefix %q used twice", m.Prefix)
		}
		seen[m.Prefix] = struct{}{}

		if err := a.mount(m, logger); err != nil {
			return nil, err
		}
		logger.Info("Mounted registry",
			slog.String("prefix", m.Prefix),
			slog.String("server", m.Registry.Name()),
			slog.String("transport", string(mode)))
	}
	return a, nil
}

func (a *App) mount(m Mount, logger *slog.Logger) error {
	switch a.mode {
	case TransportSSE:
		sse := mcpserver.NewSSEServer(m.Registry.MCPServer(),
			mcpserver.WithStaticBasePath(m.Prefix),
		)
		a.router.Mount(m.Prefix, sse)
		return nil
	case TransportStreamHTTP:
		streamable := mcpserver.NewStreamableHTTPServer(m.Registry.MCPServer(),
			mcpserver.WithEndpointPath(m.Prefix),
			mcpserver.WithStateLess(true),
		)
		// The streamable endpoint is the prefix itself; everything below it
		// stays unrouted.
		a.router.Handle(m.Prefix, streamable)
		a.contexts = append(a.contexts, lifecycle.Context{
			Name: m.Registry.Name(),
			Start: func(context.Context) error {
				logger.Info("Session manager running", slog.String("server", m.Registry.Name()))
				return nil
			},
			Close: streamable.Shutdown,
		})
		return nil
	default:
		return errors.Errorf("unknown transport %q", a.mode)
	}
}

// Handler returns the composite HTTP handler.
func (a *App) Handler() http.Handler { return a.router }

func (a *App) Mode() Transport { return a.mode }

// SessionContexts returns the lifecycle contexts in mount order; empty in
// SSE mode.
func (a *App) SessionContexts() []lifecycle.Context { return a.contexts }

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("Handled request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
