// Package util provides small shared helpers that don't fit a
// domain-specific package.
package util

import "strings"

// SafeTruncate truncates s to maxLen bytes without panicking. It is used when
// logging sensitive values like access tokens, where only a short prefix may
// be shown. A negative maxLen yields an empty string.
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// NormalizeURL removes trailing slashes so configured endpoint overrides
// compose cleanly with path suffixes.
func NormalizeURL(url string) string {
	return strings.TrimRight(url, "/")
}
