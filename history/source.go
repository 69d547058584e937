package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/reposync/git"
)

// DefaultMaxCount bounds how many commits are read from
// each log.
const DefaultMaxCount = 1000

// Source is one side of a sync: a local repository and
// its lazily loaded commit log. A Source is not safe for
// concurrent use.
type Source struct {
	// Dir is the resolved absolute repository root.
	Dir string

	backend  git.Backend
	maxCount int

	loaded  bool
	commits []Record
}

// Option configures a Source.
type Option func(*Source)

// WithMaxCount caps the number of commits read from the
// log. Values <= 0 keep DefaultMaxCount.
func WithMaxCount(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxCount = n
		}
	}
}

// Open resolves path (expanding a leading ~ and any
// symlinks) and checks it is a repository root. The
// check is eager so a bad path fails before any git
// command runs.
func Open(
	path string,
	backend git.Backend,
	opts ...Option,
) (*Source, error) {
	const errCtx = "opening repository"

	dir, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %s: %w: %w",
			errCtx, path, ErrInvalidRepository, err,
		)
	}

	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf(
			"%s: path is no directory: %s: %w",
			errCtx, dir, ErrInvalidRepository,
		)
	}

	dotGit := filepath.Join(dir, ".git")
	if fi, err := os.Stat(dotGit); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf(
			"%s: path is no git repository root: %s: %w",
			errCtx, dir, ErrInvalidRepository,
		)
	}

	s := &Source{
		Dir:      dir,
		backend:  backend,
		maxCount: DefaultMaxCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Commits returns the log, newest first. The backend is
// invoked on the first call only; later calls return the
// cached slice.
func (s *Source) Commits(ctx context.Context) ([]Record, error) {
	const errCtx = "listing commits"

	if s.loaded {
		return s.commits, nil
	}

	out, err := s.backend.Log(ctx, s.Dir, s.maxCount)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %s: %w: %w",
			errCtx, s.Dir, ErrHistoryRead, err,
		)
	}

	var commits []Record

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %s: %w: %w",
				errCtx, s.Dir, ErrHistoryRead, err,
			)
		}

		commits = append(commits, rec)
	}

	slog.Debug(
		"loaded history",
		"repo", s.Dir,
		"commits", len(commits),
	)

	s.commits = commits
	s.loaded = true

	return s.commits, nil
}

// GeneratePatch returns the patch series for the commits
// after sinceHash up to HEAD. An empty string means
// there is nothing after sinceHash.
func (s *Source) GeneratePatch(
	ctx context.Context,
	sinceHash string,
) (string, error) {
	const errCtx = "generating patch"

	series, err := s.backend.FormatPatch(
		ctx, s.Dir, sinceHash+"..HEAD",
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w: %w",
			errCtx, s.Dir, ErrPatchGeneration, err,
		)
	}

	return series, nil
}

// ApplyPatch writes series to a temporary file and
// replays it onto HEAD. The file is removed on every
// path. A failed apply is not retried or rolled back.
func (s *Source) ApplyPatch(
	ctx context.Context,
	series string,
) (retErr error) {
	const errCtx = "applying patch"

	fi, err := os.CreateTemp("", "reposync-*.patch")
	if err != nil {
		return fmt.Errorf(
			"%s: create temp file: %w: %w",
			errCtx, ErrPatchApply, err,
		)
	}

	name := fi.Name()

	defer func() {
		if rmErr := os.Remove(name); rmErr != nil &&
			!os.IsNotExist(rmErr) && retErr == nil {
			retErr = fmt.Errorf(
				"%s: remove temp file: %w", errCtx, rmErr,
			)
		}
	}()

	_, wErr := fi.WriteString(series)
	cErr := fi.Close()

	if wErr != nil || cErr != nil {
		return fmt.Errorf(
			"%s: write temp file: %w: %w",
			errCtx, ErrPatchApply, firstErr(wErr, cErr),
		)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return fmt.Errorf(
			"%s: %w: %w", errCtx, ErrPatchApply, err,
		)
	}

	if err := s.backend.ApplyMailbox(ctx, s.Dir, abs); err != nil {
		return fmt.Errorf(
			"%s: %s: %w: %w",
			errCtx, s.Dir, ErrPatchApply, err,
		)
	}

	return nil
}

// Identity returns the configured user.name and
// user.email of the repository.
func (s *Source) Identity(ctx context.Context) (git.Identity, error) {
	const errCtx = "reading identity"

	out, err := s.backend.ConfigList(ctx, s.Dir)
	if err != nil {
		return git.Identity{}, fmt.Errorf(
			"%s: %s: %w", errCtx, s.Dir, err,
		)
	}

	id, err := git.ParseIdentity(out)
	if err != nil {
		return git.Identity{}, fmt.Errorf(
			"%s: user is not configured for repository %s: %w",
			errCtx, s.Dir, err,
		)
	}

	return id, nil
}

// resolvePath expands a leading ~ and returns the
// absolute, symlink-free form of path.
func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
