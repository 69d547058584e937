package reposync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/byte4ever/reposync/git"
	"github.com/byte4ever/reposync/history"
	"github.com/byte4ever/reposync/patch"
)

// AuthorFromSource is the AUTHOR value that asks for the
// source repository's configured identity.
const AuthorFromSource = "y"

// ErrNothingToSync is returned when neither repository
// has commits after the divergence point.
var ErrNothingToSync = errors.New("nothing to sync")

// Direction names which way patches travel.
type Direction string

const (
	// AToB transfers from the first repository to the
	// second.
	AToB Direction = "a->b"

	// BToA transfers from the second repository to the
	// first.
	BToA Direction = "b->a"
)

// Config holds all settings for one sync run.
type Config struct {
	// RepoA is the path of the first repository.
	RepoA string

	// RepoB is the path of the second repository.
	RepoB string

	// Author rewrites the patch author when non-empty.
	// AuthorFromSource resolves the source side's
	// configured identity; any other value is used
	// verbatim.
	Author string

	// AuthorFormat renders a resolved identity. Empty
	// means git.DefaultIdentityFormat.
	AuthorFormat string

	// MaxCount caps how many commits are read from each
	// log. Zero means history.DefaultMaxCount.
	MaxCount int

	// DryRun stops before applying the patch.
	DryRun bool

	// Backend runs the version-control operations. Nil
	// means the git binary found on PATH.
	Backend git.Backend
}

// Result describes what a run decided and did.
type Result struct {
	Direction   Direction `json:"direction"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`

	// SourceBase and DestinationBase are the native
	// hashes of the divergence point on each side.
	SourceBase      string `json:"source_base"`
	DestinationBase string `json:"destination_base"`

	// Subject is the subject of the divergence point.
	Subject string `json:"subject"`

	Patches int    `json:"patches"`
	Digest  string `json:"digest"`
	Author  string `json:"author,omitempty"`

	// Bidirectional is set when both sides had commits
	// after the divergence point. Only the first
	// repository's commits were transferred.
	Bidirectional bool `json:"bidirectional"`

	Applied bool `json:"applied"`
}

// Run transfers the commits one repository has beyond
// the divergence point onto the other. The returned
// Result is non-nil whenever a direction was decided,
// even if applying the patch failed.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	const errCtx = "syncing repositories"

	if cfg.Backend == nil {
		cfg.Backend = &git.CLI{}
	}

	// Step 1: Open both sides.
	opts := []history.Option{history.WithMaxCount(cfg.MaxCount)}

	repoA, err := history.Open(cfg.RepoA, cfg.Backend, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	repoB, err := history.Open(cfg.RepoB, cfg.Backend, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Step 2: Resolve the divergence point from each
	// side so each gets its native hash.
	baseA, err := history.Resolve(ctx, repoA, repoB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	baseB, err := history.Resolve(ctx, repoB, repoA)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"divergence point",
		"subject", baseA.Message,
		"author_date", baseA.AuthorDate,
		"a", baseA.Hash,
		"b", baseB.Hash,
	)

	// Step 3: Generate both series.
	seriesA, err := repoA.GeneratePatch(ctx, baseA.Hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	seriesB, err := repoB.GeneratePatch(ctx, baseB.Hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if seriesA == "" && seriesB == "" {
		return nil, fmt.Errorf(
			"%s: last common commit %s is HEAD on both sides: %w",
			errCtx, baseA, ErrNothingToSync,
		)
	}

	// Step 4: Pick the direction. The first repository
	// wins when both moved.
	src, dst := repoA, repoB
	srcBase, dstBase := baseA, baseB
	series := seriesA
	dir := AToB

	if seriesA == "" {
		src, dst = repoB, repoA
		srcBase, dstBase = baseB, baseA
		series = seriesB
		dir = BToA
	}

	res := &Result{
		Direction:       dir,
		Source:          src.Dir,
		Destination:     dst.Dir,
		SourceBase:      srcBase.Hash,
		DestinationBase: dstBase.Hash,
		Subject:         srcBase.Message,
		Bidirectional:   seriesA != "" && seriesB != "",
	}

	if res.Bidirectional {
		slog.Warn(
			"both repositories have commits after the "+
				"divergence point; only the first is "+
				"transferred",
			"source", src.Dir,
			"skipped", dst.Dir,
			"skipped_patches", patch.Count(seriesB),
		)
	}

	// Step 5: Rewrite the author if requested.
	if cfg.Author != "" {
		author, err := resolveAuthor(ctx, cfg, src)
		if err != nil {
			return res, fmt.Errorf("%s: %w", errCtx, err)
		}

		series = patch.RewriteAuthor(series, author)
		res.Author = author
	}

	res.Patches = patch.Count(series)
	res.Digest = patch.Digest(series)

	if cfg.DryRun {
		slog.Info(
			"dry run: skipping apply",
			"direction", dir,
			"patches", res.Patches,
		)

		return res, nil
	}

	// Step 6: Apply to the destination.
	slog.Info(
		"applying patches",
		"direction", dir,
		"destination", dst.Dir,
		"patches", res.Patches,
	)

	if err := dst.ApplyPatch(ctx, series); err != nil {
		return res, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Applied = true

	return res, nil
}

// resolveAuthor returns the identity to write into the
// patch headers.
func resolveAuthor(
	ctx context.Context,
	cfg Config,
	src *history.Source,
) (string, error) {
	const errCtx = "resolving author"

	if cfg.Author != AuthorFromSource {
		return cfg.Author, nil
	}

	id, err := src.Identity(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return id.Format(cfg.AuthorFormat), nil
}
