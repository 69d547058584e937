package history_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/reposync/git"
	"github.com/byte4ever/reposync/history"
	"github.com/byte4ever/reposync/testing/gitfake"
)

func TestOpen_invalid(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	plain := filepath.Join(root, "plain")
	require.NoError(t, os.MkdirAll(plain, 0o750))

	dotGitFile := filepath.Join(root, "worktree")
	require.NoError(t, os.MkdirAll(dotGitFile, 0o750))
	require.NoError(
		t, os.WriteFile(
			filepath.Join(dotGitFile, ".git"),
			[]byte("gitdir: elsewhere\n"), 0o600,
		),
	)

	tests := []struct {
		name string
		path string
	}{
		{name: "missing", path: filepath.Join(root, "nope")},
		{name: "regular file", path: file},
		{name: "no .git", path: plain},
		{name: ".git is a file", path: dotGitFile},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := history.Open(tt.path, gitfake.New())
			assert.ErrorIs(t, err, history.ErrInvalidRepository)
		})
	}
}

func TestOpen_resolves_symlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	dir, err := gitfake.MakeRepoDir(root, "repo")
	require.NoError(t, err)

	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(dir, link))

	src, err := history.Open(link, gitfake.New())
	require.NoError(t, err)
	assert.Equal(t, dir, src.Dir)
}

//nolint:paralleltest // mutates HOME
func TestOpen_expands_home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := gitfake.MakeRepoDir(home, "project")
	require.NoError(t, err)

	src, err := history.Open("~/project", gitfake.New())
	require.NoError(t, err)
	assert.Equal(t, dir, src.Dir)
}

func TestSource_Commits_cached(t *testing.T) {
	t.Parallel()

	backend := gitfake.New()
	dir, repo := fakeRepo(t, backend, gitfake.LogLines(
		gitfake.LogLine("h2", "2024-01-02T00:00:00Z", "2024-01-02T00:00:00Z", "second"),
		"",
		gitfake.LogLine("h1", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z", "first commit"),
	))

	src, err := history.Open(dir, backend)
	require.NoError(t, err)

	first, err := src.Commits(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "h2", first[0].Hash)
	assert.Equal(t, "first commit", first[1].Message)

	second, err := src.Commits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.LogCalls)
	assert.Equal(t, history.DefaultMaxCount, repo.LastMaxCount)
}

func TestSource_Commits_max_count(t *testing.T) {
	t.Parallel()

	backend := gitfake.New()
	dir, repo := fakeRepo(t, backend, "")

	src, err := history.Open(
		dir, backend, history.WithMaxCount(5),
	)
	require.NoError(t, err)

	commits, err := src.Commits(context.Background())
	require.NoError(t, err)
	assert.Empty(t, commits)
	assert.Equal(t, 5, repo.LastMaxCount)

	src, err = history.Open(
		dir, backend, history.WithMaxCount(-1),
	)
	require.NoError(t, err)

	_, err = src.Commits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, history.DefaultMaxCount, repo.LastMaxCount)
}

func TestSource_Commits_errors(t *testing.T) {
	t.Parallel()

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()

		backend := gitfake.New()
		dir, repo := fakeRepo(t, backend, "")
		repo.LogErr = errors.New("exit status 128")

		src, err := history.Open(dir, backend)
		require.NoError(t, err)

		_, err = src.Commits(context.Background())
		assert.ErrorIs(t, err, history.ErrHistoryRead)
	})

	t.Run("malformed line", func(t *testing.T) {
		t.Parallel()

		backend := gitfake.New()
		dir, _ := fakeRepo(t, backend, "only three fields")

		src, err := history.Open(dir, backend)
		require.NoError(t, err)

		_, err = src.Commits(context.Background())
		require.ErrorIs(t, err, history.ErrHistoryRead)
		assert.ErrorIs(t, err, history.ErrMalformedLogLine)
	})
}

func TestSource_GeneratePatch(t *testing.T) {
	t.Parallel()

	backend := gitfake.New()
	dir, repo := fakeRepo(t, backend, "")
	repo.Patches = map[string]string{
		"abc..HEAD": "From abc\n",
	}

	src, err := history.Open(dir, backend)
	require.NoError(t, err)

	series, err := src.GeneratePatch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "From abc\n", series)

	empty, err := src.GeneratePatch(context.Background(), "def")
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.Equal(
		t, []string{"abc..HEAD", "def..HEAD"}, repo.RangeCalls,
	)

	repo.PatchErr = errors.New("bad revision")

	_, err = src.GeneratePatch(context.Background(), "abc")
	assert.ErrorIs(t, err, history.ErrPatchGeneration)
}

func TestSource_ApplyPatch(t *testing.T) {
	t.Parallel()

	backend := gitfake.New()
	dir, repo := fakeRepo(t, backend, "")

	src, err := history.Open(dir, backend)
	require.NoError(t, err)

	err = src.ApplyPatch(context.Background(), "series text\n")
	require.NoError(t, err)

	require.Len(t, repo.Applied, 1)
	assert.Equal(t, "series text\n", repo.Applied[0])
	assert.True(t, filepath.IsAbs(repo.AppliedFiles[0]))
	assert.NoFileExists(t, repo.AppliedFiles[0])
}

func TestSource_ApplyPatch_failure_removes_file(t *testing.T) {
	t.Parallel()

	backend := gitfake.New()
	dir, repo := fakeRepo(t, backend, "")
	repo.ApplyErr = errors.New("patch does not apply")

	src, err := history.Open(dir, backend)
	require.NoError(t, err)

	err = src.ApplyPatch(context.Background(), "series")
	require.ErrorIs(t, err, history.ErrPatchApply)
	assert.Contains(t, err.Error(), "patch does not apply")

	require.Len(t, repo.AppliedFiles, 1)
	assert.NoFileExists(t, repo.AppliedFiles[0])
}

func TestSource_Identity(t *testing.T) {
	t.Parallel()

	backend := gitfake.New()
	dir, repo := fakeRepo(t, backend, "")
	repo.Config = "user.name=Jane\nuser.email=jane@example.com\n"

	src, err := history.Open(dir, backend)
	require.NoError(t, err)

	id, err := src.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane <jane@example.com>", id.String())

	repo.Config = "user.name=Jane\n"

	_, err = src.Identity(context.Background())
	assert.ErrorIs(t, err, git.ErrAuthorNotConfigured)
}

// fakeRepo creates a repository directory and registers
// it with backend using log as its log output.
func fakeRepo(
	tb testing.TB,
	backend *gitfake.Backend,
	log string,
) (string, *gitfake.Repo) {
	tb.Helper()

	dir, err := gitfake.MakeRepoDir(tb.TempDir(), "repo")
	require.NoError(tb, err)

	repo := backend.Add(dir, &gitfake.Repo{Log: log})

	return dir, repo
}
