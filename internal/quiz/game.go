package quiz

import (
	"errors"
	"math/rand/v2"
	"strconv"

	"hitstertrainer/internal/core"
	"hitstertrainer/pkg/fuzzy"
)

var (
	// ErrFinished is returned when the round has no songs left
	ErrFinished = errors.New("quiz finished")
	// ErrInvalidChoice is returned for answers outside the offered options
	ErrInvalidChoice = errors.New("invalid answer choice")
	// ErrNoPlayableSongs is returned when no song carries a track id
	ErrNoPlayableSongs = errors.New("no playable songs")
)

// Question is the current step of the current song.
type Question struct {
	Step    Step
	Song    core.Song
	Answers []string
	Correct int
}

// CorrectAnswer is the answer text the player is expected to pick.
func (q Question) CorrectAnswer() string {
	return q.Answers[q.Correct]
}

type Stats struct {
	Songs   int
	Score   int
	Artists int
	Titles  int
	Years   int
	Skipped int
}

// MaxScore counts three points for every song that was not skipped.
func (s Stats) MaxScore() int {
	return (s.Songs - s.Skipped) * StepsPerSong
}

// Percentage is the rounded share of MaxScore.
func (s Stats) Percentage() int {
	maxScore := s.MaxScore()
	if maxScore == 0 {
		return 0
	}
	return (s.Score*100 + maxScore/2) / maxScore
}

// Game is the state of one round. It is not safe for concurrent use.
type Game struct {
	mode       Mode
	songs      []core.Song
	pool       []core.Song
	rng        *rand.Rand
	normalizer *fuzzy.Normalizer

	index    int
	step     Step
	question *Question
	stats    Stats
}

// NewGame starts a round over songs. Wrong answers are drawn from pool, which
// is usually the whole song database.
func NewGame(mode Mode, songs, pool []core.Song, rng *rand.Rand) *Game {
	return &Game{
		mode:       mode,
		songs:      songs,
		pool:       pool,
		rng:        rng,
		normalizer: fuzzy.NewNormalizer(),
		stats:      Stats{Songs: len(songs)},
	}
}

func (g *Game) Mode() Mode {
	return g.mode
}

func (g *Game) Finished() bool {
	return g.index >= len(g.songs)
}

// Current returns the song being asked and its 1-based position.
func (g *Game) Current() (core.Song, int, bool) {
	if g.Finished() {
		return core.Song{}, 0, false
	}
	return g.songs[g.index], g.index + 1, true
}

func (g *Game) Step() Step {
	return g.step
}

func (g *Game) Stats() Stats {
	return g.stats
}

// Question returns the current question, building its answers on first use.
func (g *Game) Question() (Question, error) {
	if g.Finished() {
		return Question{}, ErrFinished
	}
	if g.question == nil {
		q := g.buildQuestion(g.songs[g.index], g.step)
		g.question = &q
	}
	return *g.question, nil
}

// Answer scores choice for the current question and advances. It reports
// whether the choice was correct.
func (g *Game) Answer(choice int) (bool, error) {
	q, err := g.Question()
	if err != nil {
		return false, err
	}
	if choice < 0 || choice >= len(q.Answers) {
		return false, ErrInvalidChoice
	}

	correct := choice == q.Correct
	if correct {
		g.stats.Score++
		switch q.Step {
		case StepArtist:
			g.stats.Artists++
		case StepTitle:
			g.stats.Titles++
		case StepYear:
			g.stats.Years++
		}
	}

	g.question = nil
	if g.step == StepYear {
		g.nextSong()
	} else {
		g.step++
	}
	return correct, nil
}

// Skip abandons the current song without scoring it.
func (g *Game) Skip() error {
	if g.Finished() {
		return ErrFinished
	}
	g.stats.Skipped++
	g.question = nil
	g.nextSong()
	return nil
}

func (g *Game) nextSong() {
	g.index++
	g.step = StepArtist
}

func (g *Game) buildQuestion(song core.Song, step Step) Question {
	correct := answerFor(song, step)
	answers := append([]string{correct}, g.wrongAnswers(correct, step)...)

	g.rng.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	q := Question{Step: step, Song: song, Answers: answers}
	for i, answer := range answers {
		if answer == correct {
			q.Correct = i
			break
		}
	}
	return q
}

// wrongAnswers draws up to MaxWrongAnswers values from the pool that differ
// from correct and from each other once compacted.
func (g *Game) wrongAnswers(correct string, step Step) []string {
	if len(g.pool) == 0 {
		return nil
	}

	used := map[string]struct{}{g.normalizer.Compact(correct): {}}
	wrong := make([]string, 0, MaxWrongAnswers)

	for draws := 0; draws < maxDraws && len(wrong) < MaxWrongAnswers; draws++ {
		candidate := answerFor(g.pool[g.rng.IntN(len(g.pool))], step)
		key := g.normalizer.Compact(candidate)
		if key == "" || (step == StepYear && key == "0") {
			continue
		}
		if _, dup := used[key]; dup {
			continue
		}
		used[key] = struct{}{}
		wrong = append(wrong, candidate)
	}
	return wrong
}

func answerFor(song core.Song, step Step) string {
	switch step {
	case StepArtist:
		return song.Artist
	case StepTitle:
		return song.Title
	default:
		return strconv.Itoa(song.Year)
	}
}
