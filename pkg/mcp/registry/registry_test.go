package registry

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func noopHandler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("{}"), nil
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()
	b := NewBuilder("CodeAnalysisServer", "1.0.0", testLogger())
	b.Register(mcp.NewTool("run_linter"), noopHandler)
	b.Register(mcp.NewTool("run_type_checker"), noopHandler)

	reg, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "CodeAnalysisServer", reg.Name())
	assert.Equal(t, 2, reg.ToolCount())
	assert.NotNil(t, reg.MCPServer())
}

func TestDuplicateToolNameFailsBuild(t *testing.T) {
	t.Parallel()
	b := NewBuilder("CodeAnalysisServer", "1.0.0", testLogger())
	b.Register(mcp.NewTool("run_linter"), noopHandler)
	b.Register(mcp.NewTool("run_linter"), noopHandler)

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tool "run_linter" registered twice`)
}

func TestEmptyRegistryFailsBuild(t *testing.T) {
	t.Parallel()
	_, err := NewBuilder("EmptyServer", "1.0.0", testLogger()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tools")
}
