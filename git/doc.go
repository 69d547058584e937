// Package git provides the version-control capability interface used by
// reposync and its implementation on top of the git binary.
//
// The Backend interface abstracts the four external operations reposync
// performs: reading the log, formatting a patch series, applying a mailbox
// and listing configuration. CLI implements it by spawning git through the
// exec package; tests substitute an in-memory fake.
//
// Identity models the configured user.name/user.email pair and renders it
// with a fasttemplate format string.
package git
