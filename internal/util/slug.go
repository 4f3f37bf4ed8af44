// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slug converts a display name into a lowercase, dash-separated token that
// is safe in file names and URLs.
//
//	"Test Board"        → "test-board"
//	"Neighbourhood_Fun" → "neighbourhood-fun"
//	"Café Nights"       → "cafe-nights"
//	"🎉 Events!"         → "events"
func Slug(input string) string {
	// Decompose accented letters, then drop everything outside ASCII.
	s := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(input))

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugOr returns Slug(input), or fallback when nothing usable remains.
func SlugOr(input, fallback string) string {
	if s := Slug(input); s != "" {
		return s
	}
	return fallback
}
