// Package utils holds small wire-level helpers shared by the HTTP handlers:
// ticket id formatting and list-limit parsing.
package utils

import (
	"strconv"
	"strings"
)

// ParseLimit interprets the optional ?limit= value on ticket list endpoints.
// Empty, malformed, and non-positive values all mean "no cap" and yield the
// fallback, so a bad limit degrades to the full list instead of an error.
func ParseLimit(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
