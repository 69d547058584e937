package history

import "errors"

// Sentinel errors that can be checked with errors.Is().
// Each wraps the underlying cause, when there is one,
// so both remain visible in the message.

// ErrInvalidRepository is returned by Open when the path
// is not a directory or has no .git directory.
var ErrInvalidRepository = errors.New("invalid repository")

// ErrMalformedLogLine is returned when a log line has
// fewer than four space-separated fields.
var ErrMalformedLogLine = errors.New("malformed log line")

// ErrHistoryRead is returned when the commit log cannot
// be read or parsed.
var ErrHistoryRead = errors.New("history read failure")

// ErrPatchGeneration is returned when the patch series
// cannot be generated.
var ErrPatchGeneration = errors.New("patch generation failure")

// ErrPatchApply is returned when the patch series does
// not apply. The repository is left in whatever state
// git am left it; nothing is rolled back.
var ErrPatchApply = errors.New("patch apply failure")

// ErrNoCommonHistory is returned when the two histories
// share no commit by content.
var ErrNoCommonHistory = errors.New("no common history")
