package git

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/byte4ever/reposync/exec"
)

// Pattern: Strategy -- swap the process-spawning git
// client for an in-memory fake in tests.

// Backend is the narrow set of version-control
// operations reposync needs. Every method runs against
// the repository rooted at dir.
type Backend interface {
	// Log returns one line per commit formatted as
	// "<hash> <authorDate> <commitDate> <subject>",
	// newest first, at most maxCount lines.
	Log(ctx context.Context, dir string, maxCount int) (string, error)

	// FormatPatch returns the patch series for
	// rangeExpr concatenated into one mailbox text.
	FormatPatch(ctx context.Context, dir string, rangeExpr string) (string, error)

	// ApplyMailbox replays the patch series stored in
	// patchFile on top of the current tip.
	ApplyMailbox(ctx context.Context, dir string, patchFile string) error

	// ConfigList returns the effective configuration
	// as "key=value" lines.
	ConfigList(ctx context.Context, dir string) (string, error)
}

// LogFormat is the pretty format handed to git log.
const LogFormat = "%H %aI %cI %s"

// CLI is a Backend that runs the git binary.
type CLI struct {
	// Binary is the git executable name or path. Empty
	// means "git".
	Binary string

	// Out receives the output of git am. Nil discards
	// it.
	Out io.Writer
}

var _ Backend = (*CLI)(nil)

// Log runs git log over the full history in date
// order.
func (c *CLI) Log(
	ctx context.Context,
	dir string,
	maxCount int,
) (string, error) {
	const errCtx = "reading log"

	out, err := exec.Output(
		ctx, dir, c.binary(),
		"log",
		"--full-history",
		"--pretty=format:"+LogFormat,
		"--date-order",
		"--max-count="+strconv.Itoa(maxCount),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

// FormatPatch runs git format-patch for rangeExpr and
// captures the series from standard output.
func (c *CLI) FormatPatch(
	ctx context.Context,
	dir string,
	rangeExpr string,
) (string, error) {
	const errCtx = "formatting patch"

	out, err := exec.Output(
		ctx, dir, c.binary(),
		"format-patch", rangeExpr, "--stdout",
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

// ApplyMailbox runs git am on patchFile. The command
// output is forwarded to Out whether or not it
// succeeds.
func (c *CLI) ApplyMailbox(
	ctx context.Context,
	dir string,
	patchFile string,
) error {
	const errCtx = "applying mailbox"

	out, err := exec.Ex(ctx, dir, c.binary(), "am", patchFile)

	if c.Out != nil && out != "" {
		if _, wErr := io.WriteString(c.Out, out); wErr != nil && err == nil {
			return fmt.Errorf(
				"%s: forward output: %w", errCtx, wErr,
			)
		}
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// ConfigList runs git config --list.
func (c *CLI) ConfigList(
	ctx context.Context,
	dir string,
) (string, error) {
	const errCtx = "listing config"

	out, err := exec.Output(
		ctx, dir, c.binary(), "config", "--list",
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

func (c *CLI) binary() string {
	if c.Binary == "" {
		return "git"
	}

	return c.Binary
}
