// Package reposync synchronizes two local clones whose histories diverged.
// It finds the latest commit both logs share by content, generates the patch
// series one side has beyond that point, optionally rewrites its author, and
// applies it to the other side with git am.
//
// The main entry point is Run, which accepts a Config struct with all
// parameters for the workflow and returns a Result describing the decision.
// WriteReport and RenderPlan present a Result as JSON or as a table.
package reposync
