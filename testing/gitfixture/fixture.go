package gitfixture

import (
	"context"
	"os"
	oe "os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit describes one commit to create.
type Commit struct {
	// Subject is the commit message.
	Subject string

	// AuthorName and AuthorEmail default to the
	// repository identity.
	AuthorName  string
	AuthorEmail string

	// AuthorDate is kept by rebases and patches.
	AuthorDate time.Time

	// CommitDate defaults to AuthorDate. Varying it
	// between repositories changes the hash while
	// keeping the content identity.
	CommitDate time.Time

	// Path and Content default to a file named after
	// the subject holding the subject.
	Path    string
	Content string
}

// Repo is a repository created for a test.
type Repo struct {
	Dir string

	tb    testing.TB
	repo  *gogit.Repository
	name  string
	email string
}

// RequireGit skips tb when no git binary is available.
func RequireGit(tb testing.TB) {
	tb.Helper()

	if _, err := oe.LookPath("git"); err != nil {
		tb.Skip("git binary not available")
	}
}

// Init creates a repository in dir on branch main with
// a local user.name/user.email and hooks disabled.
func Init(
	tb testing.TB,
	dir string,
	name string,
	email string,
) *Repo {
	tb.Helper()

	repo, err := gogit.PlainInitWithOptions(
		dir,
		&gogit.PlainInitOptions{
			InitOptions: gogit.InitOptions{
				DefaultBranch: plumbing.NewBranchReferenceName("main"),
			},
		},
	)
	if err != nil {
		tb.Fatalf("init %s: %v", dir, err)
	}

	cfg, err := repo.Config()
	if err != nil {
		tb.Fatalf("read config %s: %v", dir, err)
	}

	cfg.User.Name = name
	cfg.User.Email = email
	// Disable hooks so pre-commit scanners do not
	// interfere with git am.
	cfg.Raw.Section("core").SetOption("hooksPath", "/dev/null")

	if err := repo.SetConfig(cfg); err != nil {
		tb.Fatalf("write config %s: %v", dir, err)
	}

	return &Repo{
		Dir:   dir,
		tb:    tb,
		repo:  repo,
		name:  name,
		email: email,
	}
}

// Commit writes the commit's file and commits it.
// Returns the new hash.
func (r *Repo) Commit(c Commit) string {
	r.tb.Helper()

	path := c.Path
	if path == "" {
		path = strings.ReplaceAll(c.Subject, " ", "_") + ".txt"
	}

	content := c.Content
	if content == "" {
		content = c.Subject + "\n"
	}

	full := filepath.Join(r.Dir, path)

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		r.tb.Fatalf("mkdir for %s: %v", path, err)
	}

	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		r.tb.Fatalf("write %s: %v", path, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		r.tb.Fatalf("worktree: %v", err)
	}

	if _, err := wt.Add(path); err != nil {
		r.tb.Fatalf("add %s: %v", path, err)
	}

	author := &object.Signature{
		Name:  valueOr(c.AuthorName, r.name),
		Email: valueOr(c.AuthorEmail, r.email),
		When:  c.AuthorDate,
	}

	commitDate := c.CommitDate
	if commitDate.IsZero() {
		commitDate = c.AuthorDate
	}

	hash, err := wt.Commit(c.Subject, &gogit.CommitOptions{
		Author: author,
		Committer: &object.Signature{
			Name:  r.name,
			Email: r.email,
			When:  commitDate,
		},
	})
	if err != nil {
		r.tb.Fatalf("commit %q: %v", c.Subject, err)
	}

	return hash.String()
}

// Git runs the git binary in the repository and returns
// its combined output.
func (r *Repo) Git(args ...string) string {
	r.tb.Helper()

	//nolint:gosec // test helper
	cmd := oe.CommandContext(
		context.Background(), "git", args...,
	)
	cmd.Dir = r.Dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		r.tb.Fatalf(
			"git %v failed: %s: %v",
			args, string(out), err,
		)
	}

	return string(out)
}

// Subjects returns the commit subjects, oldest first.
func (r *Repo) Subjects() []string {
	r.tb.Helper()

	out := strings.TrimSpace(
		r.Git("log", "--reverse", "--pretty=format:%s"),
	)
	if out == "" {
		return nil
	}

	return strings.Split(out, "\n")
}

// Head returns "author <email>|subject|authorDate" of
// HEAD as printed by git.
func (r *Repo) Head() string {
	r.tb.Helper()

	return strings.TrimSpace(
		r.Git("log", "-1", "--pretty=format:%an <%ae>|%s|%aI"),
	)
}

func valueOr(v string, def string) string {
	if v == "" {
		return def
	}

	return v
}
