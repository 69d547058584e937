// Package gitfixture builds throwaway git repositories for integration tests.
// Commits are created with go-git so author and committer dates can be set
// exactly: two repositories can then hold the same logical commits (same
// subject and author date) under different hashes, which is the situation
// reposync exists to handle.
package gitfixture
