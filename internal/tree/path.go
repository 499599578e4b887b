package tree

import "strings"

// splitPath splits a "/"-separated path into non-empty segments.
// An empty path yields a nil slice, matching the "empty path means
// operate on this Subtree itself" convention used throughout the
// Update/Remove/Lookup operations.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
