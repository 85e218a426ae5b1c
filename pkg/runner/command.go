// Package runner provides command execution for tools that shell out to
// external programs.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
)

// Result holds the outcome of an external command run. Output streams are
// captured verbatim and never parsed.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner is an interface for executing commands and getting the output/error
type CommandRunner interface {
	RunCommand(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec, waiting synchronously for completion.
// A non-zero exit is a normal Result, not an error; RunCommand returns an
// error only when the command could not be started at all.
type ExecRunner struct {
	logger *slog.Logger
}

var _ CommandRunner = &ExecRunner{}

func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) RunCommand(ctx context.Context, name string, args ...string) (Result, error) {
	r.logger.Debug("Running command", slog.String("command", name), slog.Any("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		// The tool ran to completion and reported issues through its exit
		// code; the streams carry whatever it had to say.
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, err
	}

	r.logger.Debug("Command finished",
		slog.String("command", name),
		slog.Int("exit_code", result.ExitCode))
	return result, nil
}

// IsNotInstalled reports whether err means the executable could not be
// located on the search path.
func IsNotInstalled(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// FakeCommandRunner returns canned results for tests.
type FakeCommandRunner struct {
	Result Result
	Err    error

	// Calls records every invocation, command name first.
	Calls [][]string
}

var _ CommandRunner = &FakeCommandRunner{}

func (f *FakeCommandRunner) RunCommand(_ context.Context, name string, args ...string) (Result, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if f.Err != nil {
		return f.Result, f.Err
	}
	return f.Result, nil
}
