package fuzzy

import (
	"testing"
)

// runStringTransformationTest is a helper to run tests for string transformation functions.
func runStringTransformationTest(t *testing.T, testName string,
	transformFunc func(string) string, testCases []struct {
		name     string
		input    string
		expected string
	}) {
	t.Helper()
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			result := transformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", testName, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_Compact(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple artist name",
			input:    "The Beatles",
			expected: "thebeatles",
		},
		{
			name:     "Punctuation removed",
			input:    "AC/DC",
			expected: "acdc",
		},
		{
			name:     "Exclamation inside name",
			input:    "P!nk",
			expected: "pnk",
		},
		{
			name:     "Accents folded",
			input:    "Beyoncé",
			expected: "beyonce",
		},
		{
			name:     "Apostrophes and spaces",
			input:    "Don't Stop Me Now",
			expected: "dontstopmenow",
		},
		{
			name:     "Digits kept",
			input:    "Blink-182",
			expected: "blink182",
		},
		{
			name:     "Only punctuation",
			input:    "?!",
			expected: "",
		},
	}

	runStringTransformationTest(t, "Compact", normalizer.Compact, tests)
}

func TestNormalizer_CleanTitle(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name            string
		input           string
		expected        string
		expectedChanged bool
	}{
		{"Plain title", "Hey Jude", "Hey Jude", false},
		{"Bracketed remaster", "Hey Jude (Remastered 2015)", "Hey Jude", true},
		{"Dash remaster", "Hotel California - 2013 Remaster", "Hotel California", true},
		{"Radio edit", "Song Title - Radio Edit", "Song Title", true},
		{"Featuring in brackets", "Crazy in Love (feat. Jay-Z)", "Crazy in Love", true},
		{"Featuring without brackets", "Crazy in Love feat. Jay-Z", "Crazy in Love", true},
		{"Two suffixes", "Hey Jude (Remastered 2009) [feat. Orchestra]", "Hey Jude", true},
		{"Hyphenated title kept", "Ob-La-Di, Ob-La-Da", "Ob-La-Di, Ob-La-Da", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, changed := normalizer.CleanTitle(tt.input)
			if result != tt.expected {
				t.Errorf("CleanTitle() = %q, want %q", result, tt.expected)
			}
			if changed != tt.expectedChanged {
				t.Errorf("CleanTitle() changed = %v, want %v", changed, tt.expectedChanged)
			}
		})
	}
}

func TestNormalizer_basicNormalize(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple text",
			input:    "Hello World",
			expected: "hello world",
		},
		{
			name:     "Text with punctuation",
			input:    "Hello, World!",
			expected: "hello world",
		},
		{
			name:     "Text with accents",
			input:    "Café",
			expected: "cafe",
		},
		{
			name:     "Text with multiple spaces",
			input:    "Hello    World",
			expected: "hello world",
		},
		{
			name:     "Text with leading/trailing spaces",
			input:    "  Hello World  ",
			expected: "hello world",
		},
	}

	runStringTransformationTest(t, "basicNormalize", normalizer.basicNormalize, tests)
}

func BenchmarkNormalizer_Compact(b *testing.B) {
	normalizer := NewNormalizer()
	artist := "Beyoncé feat. JAY-Z"

	b.ResetTimer()
	for range b.N {
		normalizer.Compact(artist)
	}
}
