// Package diag turns raw HTTP response bodies into short, log-friendly text.
package diag

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxLen caps the diagnostic text attached to errors.
const MaxLen = 512

var spaces = regexp.MustCompile(`\s+`)

// BodyText returns the body as trimmed text. HTML error pages are reduced to their
// visible text so logs keep the message rather than the markup.
func BodyText(body []byte) string {
	text := string(bytes.TrimSpace(body))
	if looksLikeHTML(text) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			doc.Find("script, style, head").Remove()
			text = doc.Text()
		}
	}
	text = strings.TrimSpace(spaces.ReplaceAllString(text, " "))
	return truncate(text, MaxLen)
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
