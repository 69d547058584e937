// Package history loads commit logs from local repositories and finds where
// two of them diverged.
//
// Commits are compared by content, not by hash: a Record is identified by its
// subject and author date (Key), which survive rebases and history rewrites
// that change hashes and committer dates.
//
// Source wraps one repository. It validates the path on Open, reads the log
// once through a git.Backend and caches it, and generates or applies patch
// series. Resolve intersects two logs by Key and returns the latest shared
// commit as it exists in the first source's log.
package history
