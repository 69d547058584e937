package exec_test

import (
	"context"
	"testing"
	"time"

	"github.com/byte4ever/reposync/exec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEx_success(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "", "echo", "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestEx_with_dir(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "/tmp", "pwd")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp")
}

func TestEx_failure(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(context.Background(), "", "false")

	assert.Error(t, err)
}

func TestEx_combines_stderr(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(
		context.Background(), "",
		"sh", "-c", "echo out; echo err 1>&2",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "out")
	assert.Contains(t, out, "err")
}

func TestOutput_stdout_only(t *testing.T) {
	t.Parallel()

	out, err := exec.Output(
		context.Background(), "",
		"sh", "-c", "echo out; echo noise 1>&2",
	)

	require.NoError(t, err)
	assert.Equal(t, "out\n", out)
}

func TestOutput_failure_carries_stderr(t *testing.T) {
	t.Parallel()

	_, err := exec.Output(
		context.Background(), "",
		"sh", "-c", "echo broken 1>&2; exit 3",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestOutput_empty(t *testing.T) {
	t.Parallel()

	out, err := exec.Output(context.Background(), "", "true")

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEx_cancelled_context(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(
		context.Background(), 50*time.Millisecond,
	)
	defer cancel()

	_, err := exec.Ex(ctx, "", "sleep", "5")

	assert.Error(t, err)
}
