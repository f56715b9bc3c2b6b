package assetid

import (
	"fmt"
	"regexp"
)

// ID is a validated resource handle.
type ID string

// String returns the handle.
func (id ID) String() string {
	return string(id)
}

// handleRegex accepts the characters the host allows in asset handles.
var handleRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// isReservedHandle checks for handles that pass the regex but would be
// ambiguous once rendered into markup or paths.
func isReservedHandle(raw string) bool {
	return raw == "." || raw == ".." || raw == "-"
}

// Parse validates a raw handle and returns it as an ID.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return "", fmt.Errorf("identifier cannot be empty")
	}
	if isReservedHandle(raw) {
		return "", fmt.Errorf("invalid identifier: %q is reserved", raw)
	}
	if !handleRegex.MatchString(raw) {
		return "", fmt.Errorf("invalid identifier format: %q", raw)
	}
	return ID(raw), nil
}

// Strings converts ids back to plain strings, preserving order.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
