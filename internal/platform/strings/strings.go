// Package strings provides small string and slice helpers
package strings

import (
	std "strings"
	"unicode/utf8"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// FirstNonBlank returns the first value with non whitespace content
func FirstNonBlank(vals ...string) string {
	for _, v := range vals {
		if std.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// MustPrefix normalizes and asserts a root path like /api/v1/contest
// ensures a single leading slash and no trailing slash
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Mask hides all but the last four runes of a secret.
// Secrets of four runes or fewer are fully masked; empty stays empty
func Mask(s string) string {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return std.Repeat("*", n)
	}
	r := []rune(s)
	return std.Repeat("*", n-4) + string(r[n-4:])
}

// Tail returns at most the last n bytes of s, used for log-safe body excerpts
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
