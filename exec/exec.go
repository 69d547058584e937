package exec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Ex executes the named command in the given directory and
// returns combined stdout+stderr output. Pass empty dir to
// use the current working directory. The process is killed
// when ctx is cancelled.
func Ex(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Debug(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
		"dir", dir,
	)

	cmd := exec.CommandContext(ctx, name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s %s: %w",
			errCtx, name, strings.Join(arg, " "), err,
		)
	}

	return string(by), nil
}

// Output executes the named command in the given directory
// and returns its standard output only. Standard error is
// folded into the returned error when the command fails.
func Output(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Debug(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
		"dir", dir,
	)

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Stderr = &stderr

	if dir != "" {
		cmd.Dir = dir
	}

	by, err := cmd.Output()

	slog.Debug(
		"output",
		"bytes", len(by),
		"stderr", stderr.String(),
	)

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s %s: %s: %w",
			errCtx, name, strings.Join(arg, " "),
			strings.TrimSpace(stderr.String()), err,
		)
	}

	return string(by), nil
}
