package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Resolve returns the divergence point of a and b as
// seen from a: the latest (by author date) commit whose
// content appears in both logs, picked from a's own log
// so its Hash is valid in a.
//
// When several shared commits carry the same latest
// author date, the one listed first in a's log wins. In
// a linear history that is the child, so commits made
// within the same second still resolve to the tip.
func Resolve(
	ctx context.Context,
	a *Source,
	b *Source,
) (Record, error) {
	const errCtx = "resolving divergence point"

	mine, err := a.Commits(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	theirs, err := b.Commits(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	common := intersect(mine, theirs)
	if len(common) == 0 {
		return Record{}, fmt.Errorf(
			"%s: %s and %s: %w",
			errCtx, a.Dir, b.Dir, ErrNoCommonHistory,
		)
	}

	sort.SliceStable(common, func(i, j int) bool {
		return common[i].Less(common[j])
	})

	latest := common[len(common)-1]

	for _, rec := range mine {
		if rec.Equal(latest) {
			slog.Debug(
				"divergence point",
				"repo", a.Dir,
				"commit", rec.String(),
			)

			return rec, nil
		}
	}

	// Unreachable while intersect draws from mine.
	return Record{}, fmt.Errorf(
		"%s: %s lost %s: %w",
		errCtx, a.Dir, latest, ErrNoCommonHistory,
	)
}

// intersect returns the records of mine whose content
// also appears in theirs, once per Key, oldest first
// (the reverse of the log order).
func intersect(mine []Record, theirs []Record) []Record {
	other := make(map[Key]struct{}, len(theirs))
	for _, rec := range theirs {
		other[rec.Key()] = struct{}{}
	}

	seen := make(map[Key]struct{})

	var common []Record

	for i := len(mine) - 1; i >= 0; i-- {
		rec := mine[i]
		key := rec.Key()

		if _, ok := other[key]; !ok {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		common = append(common, rec)
	}

	return common
}
