// Package exec wraps os/exec for the git invocations made by reposync. Ex
// returns combined output for commands whose chatter is shown to the user,
// Output returns standard output alone for commands whose output is parsed.
// Every call logs the command line at debug level through log/slog and is
// bound to a context so an interrupted run kills the in-flight process.
package exec
