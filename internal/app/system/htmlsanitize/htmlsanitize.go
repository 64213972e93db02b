// Package htmlsanitize reduces report text to plain text for exports.
// Report text is stored exactly as typed, so it may hold markup pasted from
// a word processor.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every tag and unescapes entities, for exports that are
// not rendered as HTML. Text without angle brackets is returned trimmed
// and otherwise untouched.
func PlainText(s string) string {
	if IsPlainText(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
