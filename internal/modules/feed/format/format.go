// Package format turns raw Mattermost message text into feed titles and
// HTML descriptions.
package format

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultTitleLength is the title length used when none is given
	DefaultTitleLength = 120
	// DefaultTitle replaces an empty first line
	DefaultTitle = "News Post"

	ellipsis = "..."
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order, each in a single pass
var markup = []rule{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "<strong>$1</strong>"},
	{regexp.MustCompile(`\*(.*?)\*`), "<em>$1</em>"},
	{regexp.MustCompile("`(.*?)`"), "<code>$1</code>"},
	{regexp.MustCompile(`\n`), "<br>"},
	{regexp.MustCompile(`\[(.*?)\]\((.*?)\)`), `<a href="$2">$1</a>`},
}

// ExtractTitle returns the first line of message cut to DefaultTitleLength
func ExtractTitle(message string) string {
	return ExtractTitleN(message, DefaultTitleLength)
}

// ExtractTitleN returns the first line of message. A line longer than
// maxLength runes is cut and marked with an ellipsis; an empty line yields
// DefaultTitle.
func ExtractTitleN(message string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultTitleLength
	}

	firstLine, _, _ := strings.Cut(message, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" {
		return DefaultTitle
	}

	if utf8.RuneCountInString(firstLine) > maxLength {
		return string([]rune(firstLine)[:maxLength]) + ellipsis
	}
	return firstLine
}

// FormatDescription escapes message for HTML and renders its lightweight
// markup: bold, italic, inline code, line breaks and links. Nested or
// unbalanced markup is passed through as is.
func FormatDescription(message string) string {
	out := html.EscapeString(strings.ReplaceAll(message, "\r\n", "\n"))
	for _, r := range markup {
		out = r.pattern.ReplaceAllString(out, r.replacement)
	}
	return out
}
