package history

// Exported aliases for testing internal functions from
// the history_test package.

// IntersectForTest exposes intersect.
var IntersectForTest = intersect
