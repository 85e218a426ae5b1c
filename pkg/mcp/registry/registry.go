// Package registry builds the fixed tool set served by one MCP server.
//
// A registry is assembled once at startup and is immutable afterwards:
// handlers are attached at construction time and there is no dynamic
// add/remove at runtime. Unknown tool names are rejected at the protocol
// layer by mcp-go itself.
package registry

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

// Builder accumulates tool registrations for one logical server.
type Builder struct {
	name    string
	version string
	logger  *slog.Logger

	tools    []registration
	byName   map[string]struct{}
	buildErr error
}

type registration struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// NewBuilder starts a registry for the named server.
func NewBuilder(name, version string, logger *slog.Logger) *Builder {
	return &Builder{
		name:    name,
		version: version,
		logger:  logger,
		byName:  make(map[string]struct{}),
	}
}

// Register adds a tool. A duplicate name is a configuration error and is
// surfaced by Build so startup fails instead of silently shadowing a tool.
func (b *Builder) Register(tool mcp.Tool, handler server.ToolHandlerFunc) *Builder {
	if _, exists := b.byName[tool.Name]; exists {
		if b.buildErr == nil {
			b.buildErr = errors.Errorf("tool %q registered twice in %s", tool.Name, b.name)
		}
		return b
	}
	b.byName[tool.Name] = struct{}{}
	b.tools = append(b.tools, registration{tool: tool, handler: handler})
	return b
}

// Build produces the immutable registry, attaching every tool in
// registration order.
func (b *Builder) Build() (*Registry, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	if len(b.tools) == 0 {
		return nil, errors.Errorf("registry %s has no tools", b.name)
	}

	mcpServer := server.NewMCPServer(
		b.name,
		b.version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
	for _, reg := range b.tools {
		mcpServer.AddTool(reg.tool, reg.handler)
		b.logger.Info("Registered tool",
			slog.String("server", b.name),
			slog.String("name", reg.tool.Name))
	}

	return &Registry{name: b.name, server: mcpServer, toolCount: len(b.tools)}, nil
}

// Registry is a named, fixed set of tools backed by an MCP server.
type Registry struct {
	name      string
	server    *server.MCPServer
	toolCount int
}

func (r *Registry) Name() string { return r.name }

// MCPServer exposes the underlying server for transport adapters.
func (r *Registry) MCPServer() *server.MCPServer { return r.server }

func (r *Registry) ToolCount() int { return r.toolCount }
