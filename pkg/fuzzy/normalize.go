// Package fuzzy folds free-form artist and title strings into comparable keys.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	bracketSuffixRegex = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(?:feat\.?|ft\.?|featuring|remix|remaster(?:ed)?|deluxe|extended|radio edit|live|version|mono|stereo)\b[^\)\]]*[\)\]]`)
	dashSuffixRegex    = regexp.MustCompile(`(?i)\s+-\s+.*\b(?:remix|remaster(?:ed)?|radio edit|edit|live|version|mono|stereo)\b.*$`)
	featRegex          = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)
	punctRegex         = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Compact folds diacritics, lower-cases and drops every rune that is not a
// letter or digit. Two strings that compact to the same key are considered equal.
func (n *Normalizer) Compact(text string) string {
	return strings.ReplaceAll(n.basicNormalize(text), " ", "")
}

// CleanTitle strips featuring credits and version suffixes such as
// "(Remastered 2009)" or "- Radio Edit". The second result reports whether
// anything was removed.
func (n *Normalizer) CleanTitle(title string) (string, bool) {
	cleaned := bracketSuffixRegex.ReplaceAllString(title, "")
	cleaned = dashSuffixRegex.ReplaceAllString(cleaned, "")
	cleaned = featRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return strings.TrimSpace(title), false
	}
	return cleaned, cleaned != strings.TrimSpace(title)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}
