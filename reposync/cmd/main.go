// Command reposync transfers the commits one local clone
// has beyond the last commit it shares with another
// clone, replaying them with git am.
//
//	reposync REPO1 REPO2 [AUTHOR]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/byte4ever/reposync/config"
	"github.com/byte4ever/reposync/git"
	"github.com/byte4ever/reposync/history"
	"github.com/byte4ever/reposync/reposync"
)

const usageLine = "USAGE: reposync REPO1 REPO2 [AUTHOR]"

// Process exit codes.
const (
	exitOK                  = 0
	exitFailure             = 1
	exitNothingToSync       = 3
	exitNoCommonHistory     = 4
	exitInvalidRepository   = 5
	exitAuthorNotConfigured = 6
	exitPatchApply          = 7
)

var errUsage = errors.New("usage")

// options holds the parsed command-line flags.
type options struct {
	configPath   string
	gitBinary    string
	maxCount     int
	authorFormat string
	dryRun       bool
	reportPath   string
	verbose      bool
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// run executes the command with args and returns the
// process exit code.
func run(
	ctx context.Context,
	args []string,
	stdout io.Writer,
	stderr io.Writer,
) int {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	slog.SetDefault(slog.New(slog.NewTextHandler(
		stderr, &slog.HandlerOptions{Level: level},
	)))

	cmd := newRootCmd(level, stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	if errors.Is(err, errUsage) {
		_, _ = fmt.Fprintln(stdout, usageLine)

		return exitFailure
	}

	slog.Error("reposync failed", "error", err)

	return exitCode(err)
}

func newRootCmd(level *slog.LevelVar, stdout io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "reposync REPO1 REPO2 [AUTHOR]",
		Short: "Transfer diverged commits between two clones",
		Long: "reposync finds the latest commit REPO1 and REPO2 share " +
			"by subject and author date, then applies the commits " +
			"one side has after it to the other side.\n\n" +
			"AUTHOR rewrites the patch author: \"y\" uses the " +
			"source repository's user.name and user.email, any " +
			"other value is used as is.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return fmt.Errorf(
					"%w: expected 2 or 3 arguments, got %d",
					errUsage, len(args),
				)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				level.Set(slog.LevelDebug)
			}

			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}

			return execute(cmd.Context(), cfg, opts, stdout)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	def := config.Default()
	flags := cmd.Flags()

	flags.StringVar(
		&opts.configPath, "config", "",
		"YAML config file (default: "+config.RelPath+
			" in the XDG config directories)",
	)
	flags.StringVar(
		&opts.gitBinary, "git", def.Git,
		"git command name or path",
	)
	flags.IntVar(
		&opts.maxCount, "max-count", def.MaxCount,
		"maximum number of commits read from each log",
	)
	flags.StringVar(
		&opts.authorFormat, "author-format", def.AuthorFormat,
		"template for a resolved author identity",
	)
	flags.BoolVar(
		&opts.dryRun, "dry-run", false,
		"print the sync plan without applying it",
	)
	flags.StringVar(
		&opts.reportPath, "report", "",
		"write a JSON report to this path (- for stdout)",
	)
	flags.BoolVarP(
		&opts.verbose, "verbose", "v", false,
		"enable debug logging",
	)

	return cmd
}

// buildConfig merges flags, positional arguments and
// the config file into a run configuration.
func buildConfig(
	cmd *cobra.Command,
	opts options,
	args []string,
) (reposync.Config, error) {
	const errCtx = "building configuration"

	file, err := config.Load(opts.configPath)
	if err != nil {
		return reposync.Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	flags := cmd.Flags()

	if flags.Changed("git") {
		file.Git = opts.gitBinary
	}

	if flags.Changed("max-count") {
		if opts.maxCount <= 0 {
			return reposync.Config{}, fmt.Errorf(
				"%w: --max-count must be positive", errUsage,
			)
		}

		file.MaxCount = opts.maxCount
	}

	if flags.Changed("author-format") {
		file.AuthorFormat = opts.authorFormat
	}

	if len(args) == 3 {
		file.Author = args[2]
	}

	slog.Debug(
		"configuration",
		"git", file.Git,
		"max_count", file.MaxCount,
		"author", file.Author,
		"author_format", file.AuthorFormat,
	)

	return reposync.Config{
		RepoA:        args[0],
		RepoB:        args[1],
		Author:       file.Author,
		AuthorFormat: file.AuthorFormat,
		MaxCount:     file.MaxCount,
		DryRun:       opts.dryRun,
		Backend: &git.CLI{
			Binary: file.Git,
			Out:    cmd.OutOrStdout(),
		},
	}, nil
}

// execute runs the sync and prints the plan and report
// when requested.
func execute(
	ctx context.Context,
	cfg reposync.Config,
	opts options,
	stdout io.Writer,
) error {
	const errCtx = "running reposync"

	res, runErr := reposync.Run(ctx, cfg)

	if res != nil && opts.dryRun {
		if err := reposync.RenderPlan(stdout, res); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if res != nil && opts.reportPath != "" {
		if err := writeReport(opts.reportPath, stdout, res); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("%s: %w", errCtx, runErr)
	}

	return nil
}

func writeReport(path string, stdout io.Writer, res *reposync.Result) (retErr error) {
	const errCtx = "writing report file"

	if path == "-" {
		return reposync.WriteReport(stdout, res)
	}

	fi, err := os.Create(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if cErr := fi.Close(); cErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, cErr)
		}
	}()

	return reposync.WriteReport(fi, res)
}

// exitCode maps an error to the documented process exit
// status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage):
		return exitFailure
	case errors.Is(err, reposync.ErrNothingToSync):
		return exitNothingToSync
	case errors.Is(err, history.ErrNoCommonHistory):
		return exitNoCommonHistory
	case errors.Is(err, history.ErrInvalidRepository):
		return exitInvalidRepository
	case errors.Is(err, git.ErrAuthorNotConfigured):
		return exitAuthorNotConfigured
	case errors.Is(err, history.ErrPatchApply):
		return exitPatchApply
	default:
		return exitFailure
	}
}
