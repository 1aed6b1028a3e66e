// Package quiz runs the Hitster guessing game: for each song the player names
// the artist, the title and the release year.
package quiz

import "strings"

type Mode string

const (
	ModeEasy   Mode = "easy"
	ModeMedium Mode = "medium"
	ModeHard   Mode = "hard"
)

const (
	easySongs   = 5
	mediumSongs = 10
	hardSongs   = 15
)

// ParseMode maps a mode name to a Mode. Unknown names select ModeMedium.
func ParseMode(name string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeEasy:
		return ModeEasy
	case ModeHard:
		return ModeHard
	default:
		return ModeMedium
	}
}

// SongCount is the number of songs a round in this mode plays.
func (m Mode) SongCount() int {
	switch m {
	case ModeEasy:
		return easySongs
	case ModeHard:
		return hardSongs
	default:
		return mediumSongs
	}
}

func Modes() []Mode {
	return []Mode{ModeEasy, ModeMedium, ModeHard}
}

// Step is one of the three questions asked per song.
type Step int

const (
	StepArtist Step = iota
	StepTitle
	StepYear
)

// StepsPerSong is the number of questions, and points, per song.
const StepsPerSong = 3

func (s Step) String() string {
	switch s {
	case StepArtist:
		return "artist"
	case StepTitle:
		return "title"
	default:
		return "year"
	}
}

// QuestionKey is the i18n key of the question text.
func (s Step) QuestionKey() string {
	return "quiz.question." + s.String()
}

// Encouragement returns the i18n key of the closing line for a percentage.
func Encouragement(percentage int) string {
	switch {
	case percentage >= 90:
		return "quiz.encouragement.legend"
	case percentage >= 75:
		return "quiz.encouragement.expert"
	case percentage >= 60:
		return "quiz.encouragement.good"
	case percentage >= 40:
		return "quiz.encouragement.practice"
	default:
		return "quiz.encouragement.learn"
	}
}
