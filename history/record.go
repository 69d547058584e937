package history

import (
	"fmt"
	"strings"
)

// Key is the content identity of a commit. Rewriting or
// rebasing changes hashes and committer dates but keeps
// the subject and the author date, so two records with
// the same Key denote the same logical commit.
type Key struct {
	Message    string
	AuthorDate string
}

// Record is one commit as read from a log line.
type Record struct {
	// Hash is only meaningful inside the history it was
	// read from.
	Hash string

	// AuthorDate is the strict ISO-8601 author date.
	AuthorDate string

	// CommitDate is informational.
	CommitDate string

	// Message is the subject line.
	Message string
}

// ParseRecord builds a Record from a line formatted as
// "<hash> <authorDate> <commitDate> <subject...>". The
// subject is kept verbatim, internal spaces included.
func ParseRecord(line string) (Record, error) {
	const errCtx = "parsing log line"

	fields := strings.SplitN(line, " ", 4)
	if len(fields) < 4 {
		return Record{}, fmt.Errorf(
			"%s: %q: %w", errCtx, line, ErrMalformedLogLine,
		)
	}

	return Record{
		Hash:       fields[0],
		AuthorDate: fields[1],
		CommitDate: fields[2],
		Message:    fields[3],
	}, nil
}

// Key returns the content identity of r.
func (r Record) Key() Key {
	return Key{
		Message:    r.Message,
		AuthorDate: r.AuthorDate,
	}
}

// Equal reports whether other is a Record (or non-nil
// *Record) with the same content identity. Anything else
// is never equal.
func (r Record) Equal(other any) bool {
	o, ok := asRecord(other)
	if !ok {
		return false
	}

	return r.Key() == o.Key()
}

// Less reports whether r was authored before other.
// Anything that is not a record is never ordered.
func (r Record) Less(other any) bool {
	o, ok := asRecord(other)
	if !ok {
		return false
	}

	return r.AuthorDate < o.AuthorDate
}

// String returns a diagnostic representation.
func (r Record) String() string {
	return fmt.Sprintf(
		"Commit(%s %s %s %s)",
		r.Hash, r.AuthorDate, r.CommitDate, r.Message,
	)
}

func asRecord(v any) (Record, bool) {
	switch o := v.(type) {
	case Record:
		return o, true
	case *Record:
		if o == nil {
			return Record{}, false
		}

		return *o, true
	default:
		return Record{}, false
	}
}
