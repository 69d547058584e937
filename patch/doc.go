// Package patch inspects and edits mailbox patch series as produced by git
// format-patch --stdout: rewriting the author header, extracting authors,
// counting patches and computing a digest of the series.
package patch
