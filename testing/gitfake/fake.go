// Package gitfake provides an in-memory git.Backend for
// tests that exercise history resolution and patch
// transfer without spawning git.
package gitfake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/byte4ever/reposync/git"
)

// Repo is the canned state of one fake repository.
type Repo struct {
	// Log is returned by Log verbatim.
	Log string
	// LogErr fails Log when set.
	LogErr error

	// Patches maps a range expression such as
	// "abc..HEAD" to its series. Missing ranges yield
	// an empty series.
	Patches map[string]string
	// PatchErr fails FormatPatch when set.
	PatchErr error

	// Config is returned by ConfigList verbatim.
	Config string
	// ConfigErr fails ConfigList when set.
	ConfigErr error

	// ApplyErr fails ApplyMailbox when set. The patch
	// is still recorded.
	ApplyErr error

	// Applied holds the content of every patch file
	// handed to ApplyMailbox, read at call time.
	Applied []string
	// AppliedFiles holds the paths handed to
	// ApplyMailbox.
	AppliedFiles []string

	// LogCalls counts Log invocations.
	LogCalls int
	// RangeCalls records FormatPatch range
	// expressions in call order.
	RangeCalls []string
	// LastMaxCount is the maxCount of the last Log
	// call.
	LastMaxCount int
}

// Backend is a git.Backend keyed by repository
// directory.
type Backend struct {
	mu    sync.Mutex
	repos map[string]*Repo
}

var _ git.Backend = (*Backend)(nil)

// New returns an empty Backend.
func New() *Backend {
	return &Backend{repos: make(map[string]*Repo)}
}

// Add registers repo under dir. dir is resolved the way
// history.Open resolves paths so lookups match.
func (b *Backend) Add(dir string, repo *Repo) *Repo {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.repos[canonical(dir)] = repo

	return repo
}

// Log implements git.Backend.
func (b *Backend) Log(
	_ context.Context,
	dir string,
	maxCount int,
) (string, error) {
	repo, err := b.lookup(dir)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	repo.LogCalls++
	repo.LastMaxCount = maxCount

	if repo.LogErr != nil {
		return "", repo.LogErr
	}

	return repo.Log, nil
}

// FormatPatch implements git.Backend.
func (b *Backend) FormatPatch(
	_ context.Context,
	dir string,
	rangeExpr string,
) (string, error) {
	repo, err := b.lookup(dir)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	repo.RangeCalls = append(repo.RangeCalls, rangeExpr)

	if repo.PatchErr != nil {
		return "", repo.PatchErr
	}

	return repo.Patches[rangeExpr], nil
}

// ApplyMailbox implements git.Backend.
func (b *Backend) ApplyMailbox(
	_ context.Context,
	dir string,
	patchFile string,
) error {
	repo, err := b.lookup(dir)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(patchFile) //nolint:gosec // test fake
	if err != nil {
		return fmt.Errorf("fake am: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	repo.Applied = append(repo.Applied, string(content))
	repo.AppliedFiles = append(repo.AppliedFiles, patchFile)

	return repo.ApplyErr
}

// ConfigList implements git.Backend.
func (b *Backend) ConfigList(
	_ context.Context,
	dir string,
) (string, error) {
	repo, err := b.lookup(dir)
	if err != nil {
		return "", err
	}

	if repo.ConfigErr != nil {
		return "", repo.ConfigErr
	}

	return repo.Config, nil
}

func (b *Backend) lookup(dir string) (*Repo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	repo, ok := b.repos[canonical(dir)]
	if !ok {
		return nil, fmt.Errorf("fake: unknown repository %s", dir)
	}

	return repo, nil
}

// LogLine formats one line the way git.CLI.Log prints
// it.
func LogLine(hash, authorDate, commitDate, subject string) string {
	return strings.Join(
		[]string{hash, authorDate, commitDate, subject}, " ",
	)
}

// LogLines joins lines the way git log --pretty=format
// separates them.
func LogLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

// MakeRepoDir creates a directory with an empty .git
// subdirectory under parent and returns its path.
func MakeRepoDir(parent string, name string) (string, error) {
	dir := filepath.Join(parent, name)

	if err := os.MkdirAll(
		filepath.Join(dir, ".git"), 0o750,
	); err != nil {
		return "", fmt.Errorf("making repo dir: %w", err)
	}

	return canonical(dir), nil
}

func canonical(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	return abs
}
