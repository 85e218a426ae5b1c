// Package analysis exposes the code analysis tools: a Ruff lint pass and a
// Mypy type check, both run as external processes against a project path.
package analysis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"

	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/registry"
	"github.com/devtoolbox/devtoolbox-mcp/pkg/runner"
)

// Config selects the external executables. Display names appear in error
// messages; executables are resolved through PATH at invocation time.
type Config struct {
	LinterBin         string
	LinterName        string
	TypeCheckerBin    string
	TypeCheckerName   string
	LinterSentinel    string
	TypeCheckSentinel string
}

// DefaultConfig matches the stock toolchain: ruff for linting, mypy for
// type checking.
func DefaultConfig() Config {
	return Config{
		LinterBin:         "ruff",
		LinterName:        "Ruff",
		TypeCheckerBin:    "mypy",
		TypeCheckerName:   "Mypy",
		LinterSentinel:    "No issues found.",
		TypeCheckSentinel: "No type errors found.",
	}
}

// CheckReport is the success payload: the external tool's streams verbatim.
// A non-zero exit from the tool means findings, not failure, so the status
// stays "success" either way.
type CheckReport struct {
	Status string `json:"status"`
	Output string `json:"output"`
	Errors string `json:"errors"`
}

// ToolSet holds the code analysis handlers and their shared runner.
type ToolSet struct {
	cfg    Config
	runner runner.CommandRunner
	logger *slog.Logger
}

func NewToolSet(cfg Config, cmdRunner runner.CommandRunner, logger *slog.Logger) *ToolSet {
	return &ToolSet{cfg: cfg, runner: cmdRunner, logger: logger}
}

// Register attaches run_linter and run_type_checker to the registry builder.
func (t *ToolSet) Register(b *registry.Builder) {
	b.Register(mcp.NewTool("run_linter",
		mcp.WithDescription("Performs linting and static analysis using Ruff and returns the results."),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Path to the project to lint."),
		),
	), t.handleRunLinter)

	b.Register(mcp.NewTool("run_type_checker",
		mcp.WithDescription("Performs static type checking using Mypy and returns the results."),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Path to the project to type check."),
		),
	), t.handleRunTypeChecker)
}

func (t *ToolSet) handleRunLinter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, ok := req.GetArguments()["project_path"].(string)
	if !ok || projectPath == "" {
		return errorResult(errors.New("invalid or missing project_path")), nil
	}
	return t.runCheck(ctx, t.cfg.LinterName, t.cfg.LinterSentinel,
		t.cfg.LinterBin, "check", projectPath), nil
}

func (t *ToolSet) handleRunTypeChecker(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, ok := req.GetArguments()["project_path"].(string)
	if !ok || projectPath == "" {
		return errorResult(errors.New("invalid or missing project_path")), nil
	}
	return t.runCheck(ctx, t.cfg.TypeCheckerName, t.cfg.TypeCheckSentinel,
		t.cfg.TypeCheckerBin, projectPath), nil
}

// runCheck executes one external tool synchronously and translates every
// outcome into an invocation result; no fault escapes to the transport.
func (t *ToolSet) runCheck(ctx context.Context, displayName, sentinel, bin string, args ...string) *mcp.CallToolResult {
	result, err := t.runner.RunCommand(ctx, bin, args...)
	if err != nil {
		if runner.IsNotInstalled(err) {
			return errorResult(errors.Errorf("%s is not installed or not in PATH.", displayName))
		}
		return errorResult(err)
	}

	if result.ExitCode != 0 {
		t.logger.Debug("Analysis tool reported findings",
			slog.String("tool", displayName),
			slog.Int("exit_code", result.ExitCode))
	}

	output := result.Stdout
	if output == "" {
		output = sentinel
	}
	return jsonResult(CheckReport{
		Status: "success",
		Output: output,
		Errors: result.Stderr,
	})
}

func errorResult(err error) *mcp.CallToolResult {
	return jsonResult(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "error", Message: err.Error()})
}

func jsonResult(v any) *mcp.CallToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultText(`{"status":"error","message":"failed to encode result"}`)
	}
	return mcp.NewToolResultText(string(payload))
}
