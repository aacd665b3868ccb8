// Package paths provides note path and title helpers.
// Joins vault path segments and keeps note titles within safe bounds.
package paths

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultSeparator is used by JoinPath when no separator is given.
	DefaultSeparator = "/"
	// DefaultTitleMax is the longest title ClampTitle lets through.
	DefaultTitleMax = 200

	ellipsis = "..."
)

var titleStripper = strings.NewReplacer(":", "", "/", "", `\`, "")

// JoinPath joins segments with sep and collapses any run of two or more
// separators into one. An empty sep means DefaultSeparator.
func JoinPath(segments []string, sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	joined := strings.Join(segments, sep)

	// The separator may be a regexp metacharacter (e.g. a backslash).
	runs := regexp.MustCompile("(?:" + regexp.QuoteMeta(sep) + "){2,}")
	return runs.ReplaceAllLiteralString(joined, sep)
}

// ClampTitle returns title unchanged if it has at most max runes, otherwise
// the first max-3 runes followed by "...".
func ClampTitle(title string, max int) string {
	if max <= 0 {
		max = DefaultTitleMax
	}
	if utf8.RuneCountInString(title) <= max {
		return title
	}
	keep := max - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(title)[:keep]) + ellipsis
}

// StripTitle removes the characters a note name cannot carry (":", "/" and "\").
func StripTitle(title string) string {
	return titleStripper.Replace(title)
}
