// Package match holds the secret word predicate
package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold trims surrounding whitespace and lowercases s with root language rules.
// A cases.Caser is stateful so each call gets its own
func Fold(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Matches reports whether a comment is exactly the secret word, ignoring case
// and surrounding whitespace. An empty secret never matches
func Matches(commentText, secretWord string) bool {
	want := Fold(secretWord)
	if want == "" {
		return false
	}
	return Fold(commentText) == want
}
