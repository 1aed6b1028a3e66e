// Package i18n holds the UI strings of the quiz and the lookup tools in every
// supported language.
package i18n

import (
	"fmt"
	"slices"
)

const (
	// DefaultLanguage also backs keys a translation does not have
	DefaultLanguage = "en"
	// DutchMessages is the language the trainer was first written for
	DutchMessages = "nl"
)

// catalogs lists the supported languages in display order.
var catalogs = []struct {
	language string
	messages map[string]string
}{
	{DefaultLanguage, englishMessages},
	{DutchMessages, dutchMessages},
}

// Localizer renders message keys in one language. Keys missing from that
// language come from English; unknown keys are returned as-is.
type Localizer struct {
	language string
	chain    []map[string]string
}

// NewLocalizer picks the catalog for language. Unsupported languages get the
// default one.
func NewLocalizer(language string) *Localizer {
	if !IsSupported(language) {
		language = DefaultLanguage
	}

	chain := []map[string]string{getMessages(language)}
	if language != DefaultLanguage {
		chain = append(chain, getMessages(DefaultLanguage))
	}
	return &Localizer{language: language, chain: chain}
}

func (l *Localizer) Language() string {
	return l.language
}

// T renders key, formatting it with args when any are given.
func (l *Localizer) T(key string, args ...any) string {
	for _, messages := range l.chain {
		message, ok := messages[key]
		if !ok {
			continue
		}
		if len(args) == 0 {
			return message
		}
		return fmt.Sprintf(message, args...)
	}
	return key
}

func GetSupportedLanguages() []string {
	languages := make([]string, 0, len(catalogs))
	for _, c := range catalogs {
		languages = append(languages, c.language)
	}
	return languages
}

func IsSupported(language string) bool {
	return slices.Contains(GetSupportedLanguages(), language)
}

func getMessages(language string) map[string]string {
	for _, c := range catalogs {
		if c.language == language {
			return c.messages
		}
	}
	return englishMessages
}
