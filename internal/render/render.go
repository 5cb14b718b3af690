// Package render turns user-submitted text into HTML that is safe to embed.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Markdown renders markdown to sanitized HTML.
func Markdown(src string) string {
	unsafe := blackfriday.Run([]byte(src),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.HardLineBreak|blackfriday.Autolink))
	return string(ugc.SanitizeBytes(unsafe))
}

// PlainText strips every tag and trims surrounding space. Used for titles,
// author names and other fields that must never carry markup.
func PlainText(src string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(src)))
}

// Excerpt returns at most n runes of the plain text form of src.
func Excerpt(src string, n int) string {
	r := []rune(PlainText(src))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
