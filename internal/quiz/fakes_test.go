package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/playback"
	"hitstertrainer/internal/store"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func testSongs(n int) []core.Song {
	songs := make([]core.Song, n)
	for i := range songs {
		songs[i] = core.Song{
			Artist:  fmt.Sprintf("Artist %c", 'A'+i),
			Title:   fmt.Sprintf("Title %c", 'A'+i),
			Year:    1960 + i,
			TrackID: fmt.Sprintf("track%02d", i),
		}
	}
	return songs
}

type recentSet map[string]bool

func (r recentSet) Has(trackID string) bool {
	return r[trackID]
}

type fakePlayer struct {
	failing map[string]core.FailureReason
	played  []string
	skipped []core.FailureReason
}

func (p *fakePlayer) Play(_ context.Context, req playback.Request) core.PlaybackAttempt {
	p.played = append(p.played, req.TrackID)
	if reason, ok := p.failing[req.TrackID]; ok {
		return core.PlaybackAttempt{Status: core.StatusFailed, Reason: reason, TrackID: req.TrackID}
	}
	return core.PlaybackAttempt{Status: core.StatusPlaying, TrackID: req.TrackID}
}

func (p *fakePlayer) Skip(_ context.Context, reason core.FailureReason) {
	p.skipped = append(p.skipped, reason)
}

// scriptedPrompter answers correctly unless wrongSteps names the step.
type scriptedPrompter struct {
	wrongSteps map[Step]bool
	asked      []Question
	reveals    []Reveal
	skipped    []core.Song
	finished   *store.QuizResult
	err        error
}

func (p *scriptedPrompter) Ask(_ context.Context, q Question, _ Progress) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.asked = append(p.asked, q)
	if p.wrongSteps[q.Step] {
		return (q.Correct + 1) % len(q.Answers), nil
	}
	return q.Correct, nil
}

func (p *scriptedPrompter) Reveal(r Reveal) {
	p.reveals = append(p.reveals, r)
}

func (p *scriptedPrompter) Skipped(song core.Song, _ core.FailureReason) {
	p.skipped = append(p.skipped, song)
}

func (p *scriptedPrompter) Finished(result store.QuizResult) {
	p.finished = &result
}

type fakeRecorder struct {
	results []store.QuizResult
	plays   []string
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, result store.QuizResult) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.results = append(r.results, result)
	return int64(len(r.results)), nil
}

func (r *fakeRecorder) RecordPlays(_ context.Context, trackIDs []string) error {
	if r.err != nil {
		return r.err
	}
	r.plays = append(r.plays, trackIDs...)
	return nil
}
