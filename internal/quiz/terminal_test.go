package quiz

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/i18n"
	"hitstertrainer/internal/store"
)

func TestTerminalPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	prompter := NewTerminalPrompter(strings.NewReader("abc\n7\n2\n"), &out, i18n.NewLocalizer(i18n.DefaultLanguage))

	q := Question{Step: StepArtist, Answers: []string{"ABBA", "Queen", "Toto", "Blondie"}}
	choice, err := prompter.Ask(context.Background(), q, Progress{Song: 1, Songs: 5, Step: StepArtist})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if choice != 1 {
		t.Errorf("Ask() = %d, want 1", choice)
	}

	output := out.String()
	for _, want := range []string{"Who is the artist?", "2) Queen", "Song 1/5", "between 1 and 4"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Count(output, "between 1 and 4") != 2 {
		t.Errorf("expected two rejections:\n%s", output)
	}
}

func TestTerminalPrompter_AskEOF(t *testing.T) {
	prompter := NewTerminalPrompter(strings.NewReader(""), &bytes.Buffer{}, i18n.NewLocalizer(i18n.DefaultLanguage))

	q := Question{Step: StepYear, Answers: []string{"1974", "1980"}}
	if _, err := prompter.Ask(context.Background(), q, Progress{}); err == nil {
		t.Error("Ask() expected error on closed input")
	}
}

func TestTerminalPrompter_AskLastLineWithoutNewline(t *testing.T) {
	prompter := NewTerminalPrompter(strings.NewReader("2"), &bytes.Buffer{}, i18n.NewLocalizer(i18n.DefaultLanguage))

	q := Question{Step: StepYear, Answers: []string{"1974", "1980"}}
	choice, err := prompter.Ask(context.Background(), q, Progress{})
	if err != nil || choice != 1 {
		t.Errorf("Ask() = %d, %v, want 1, nil", choice, err)
	}
}

func TestTerminalPrompter_RevealAndSkip(t *testing.T) {
	var out bytes.Buffer
	prompter := NewTerminalPrompter(strings.NewReader(""), &out, i18n.NewLocalizer(i18n.DutchMessages))
	song := core.Song{Artist: "ABBA", Title: "Waterloo", Year: 1974}

	prompter.Reveal(Reveal{Question: Question{Step: StepYear, Song: song, Answers: []string{"1974"}}, Correct: true})
	prompter.Skipped(song, core.ReasonNoActiveDevice)

	output := out.String()
	for _, want := range []string{"✅ Correct!", "Jaar: 1974", "ABBA - Waterloo overgeslagen", "Geen actief Spotify apparaat gevonden"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestSummary(t *testing.T) {
	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)
	result := store.QuizResult{Score: 12, MaxScore: 15, Artists: 5, Titles: 4, Years: 3, Skipped: 1}

	lines := Summary(localizer, result)
	expected := []string{
		"Final score: 12/15 (80%)",
		"Artists correct: 5/5",
		"Titles correct: 4/5",
		"Years correct: 3/5",
		"Skipped songs: 1",
		"🌟 Great! You really know your music! 🌟",
	}

	if len(lines) != len(expected) {
		t.Fatalf("Summary() = %v, want %v", lines, expected)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], expected[i])
		}
	}
}

func TestReasonKey(t *testing.T) {
	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)
	for _, reason := range core.AllFailureReasons() {
		key := ReasonKey(reason)
		if localizer.T(key) == key {
			t.Errorf("no translation for %s (%s)", reason, key)
		}
	}
}
