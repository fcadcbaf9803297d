package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NFC composes hangul jamo and other decomposed runes, pages rendered by some
// browsers hand back NFD text which would never match a composed alias.
func NFC(text string) string {
	return norm.NFC.String(text)
}

// Collapse is NFC plus every run of whitespace (including no-break spaces)
// turned into a single space, trimmed at both ends.
func Collapse(text string) string {
	text = NFC(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
