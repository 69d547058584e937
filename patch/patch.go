package patch

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	// fromHeader matches the author header of one
	// patch: "From: name <email>" directly followed by
	// the Date: header.
	fromHeader = regexp.MustCompile(`(From: )(.+ <\S+>)(\nDate: )`)

	// separator matches the mbox line opening each
	// patch produced by git format-patch.
	separator = regexp.MustCompile(
		`(?m)^From [0-9a-f]{40} Mon Sep 17 00:00:00 2001$`,
	)
)

// RewriteAuthor replaces the identity of every author
// header in series with author. Diff hunks, message
// bodies and dates are left untouched.
func RewriteAuthor(series string, author string) string {
	repl := "${1}" + strings.ReplaceAll(author, "$", "$$") + "${3}"

	return fromHeader.ReplaceAllString(series, repl)
}

// Authors returns the identity of every author header in
// series, in order.
func Authors(series string) []string {
	var authors []string

	for _, m := range fromHeader.FindAllStringSubmatch(series, -1) {
		authors = append(authors, m[2])
	}

	return authors
}

// Count returns the number of patches in series.
func Count(series string) int {
	return len(separator.FindAllStringIndex(series, -1))
}

// Digest returns the SHA256 hex digest of series.
func Digest(series string) string {
	sum := sha256.Sum256([]byte(series))

	return hex.EncodeToString(sum[:])
}
