// Package sanitize cleans free text supplied by API clients before it is
// stored on a pipeline lead.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Text strips HTML tags, including tags hidden behind entities, and trims
// the result. Line breaks inside the text are kept.
func Text(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Line is Text for single-line values such as tags. Runs of whitespace
// collapse to one space.
func Line(s string) string {
	return whitespaceRegex.ReplaceAllString(Text(s), " ")
}
