package runner

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestExecRunnerCapturesStreams(t *testing.T) {
	t.Parallel()
	r := NewExecRunner(testLogger())

	result, err := r.RunCommand(context.Background(), "sh", "-c", "echo out; echo err 1>&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()
	r := NewExecRunner(testLogger())

	result, err := r.RunCommand(context.Background(), "sh", "-c", "echo findings; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "findings\n", result.Stdout)
	assert.Equal(t, 3, result.ExitCode)
}

func TestExecRunnerMissingExecutable(t *testing.T) {
	t.Parallel()
	r := NewExecRunner(testLogger())

	_, err := r.RunCommand(context.Background(), "definitely-not-a-real-binary-1234")
	require.Error(t, err)
	assert.True(t, IsNotInstalled(err))
}

func TestIsNotInstalled(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNotInstalled(&exec.Error{Name: "ruff", Err: exec.ErrNotFound}))
	assert.False(t, IsNotInstalled(assert.AnError))
	assert.False(t, IsNotInstalled(nil))
}

func TestFakeCommandRunnerRecordsCalls(t *testing.T) {
	t.Parallel()
	fake := &FakeCommandRunner{Result: Result{Stdout: "ok"}}

	result, err := fake.RunCommand(context.Background(), "ruff", "check", "/src")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Stdout)
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"ruff", "check", "/src"}, fake.Calls[0])
}
