package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/playback"
	"hitstertrainer/internal/store"
)

// Player plays one song per call. *playback.Session implements it.
type Player interface {
	Play(ctx context.Context, req playback.Request) core.PlaybackAttempt
	Skip(ctx context.Context, reason core.FailureReason)
}

// Progress describes where the round stands when a question is asked.
type Progress struct {
	Song   int
	Songs  int
	Step   Step
	Score  int
	Played core.PlaybackAttempt
}

// Reveal is shown after every answer.
type Reveal struct {
	Question Question
	Choice   int
	Correct  bool
}

// Prompter is the user-facing side of a round.
type Prompter interface {
	Ask(ctx context.Context, q Question, progress Progress) (int, error)
	Reveal(r Reveal)
	Skipped(song core.Song, reason core.FailureReason)
	Finished(result store.QuizResult)
}

// Recorder persists finished rounds. *store.History implements it.
type Recorder interface {
	Record(ctx context.Context, result store.QuizResult) (int64, error)
	RecordPlays(ctx context.Context, trackIDs []string) error
}

type Driver struct {
	player   Player
	prompter Prompter
	recorder Recorder
	recent   *store.RecentPlays
	rng      *rand.Rand
	logger   *zap.Logger
	now      func() time.Time
}

// NewDriver wires a round runner. recorder and recent may be nil.
func NewDriver(
	player Player,
	prompter Prompter,
	recorder Recorder,
	recent *store.RecentPlays,
	rng *rand.Rand,
	logger *zap.Logger,
) *Driver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Driver{
		player:   player,
		prompter: prompter,
		recorder: recorder,
		recent:   recent,
		rng:      rng,
		logger:   logger,
		now:      time.Now,
	}
}

// Run plays one round in mode over the song database. Songs whose playback
// fails are skipped. The round ends when the selected songs run out.
func (d *Driver) Run(ctx context.Context, mode Mode, songs []core.Song) (*store.QuizResult, error) {
	var recent RecentSet
	if d.recent != nil {
		recent = d.recent
	}

	selected := SelectSongs(songs, mode.SongCount(), recent, d.rng)
	if len(selected) == 0 {
		return nil, ErrNoPlayableSongs
	}

	d.logger.Info("Starting quiz",
		zap.String("mode", string(mode)),
		zap.Int("songs", len(selected)),
		zap.Int("available", len(songs)))

	game := NewGame(mode, selected, songs, d.rng)
	played := make([]string, 0, len(selected))

	for !game.Finished() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		song, position, _ := game.Current()
		attempt := d.player.Play(ctx, playback.Request{
			TrackID:             song.TrackID,
			PreviewURL:          song.PreviewURL,
			SecondaryPreviewURL: song.SecondaryPreviewURL,
		})

		if !attempt.Succeeded() {
			d.player.Skip(ctx, attempt.Reason)
			d.prompter.Skipped(song, attempt.Reason)
			_ = game.Skip()
			continue
		}

		played = append(played, song.TrackID)
		if d.recent != nil {
			d.recent.Add(song.TrackID)
		}

		if err := d.askSong(ctx, game, position, len(selected), attempt); err != nil {
			return nil, err
		}
	}

	stats := game.Stats()
	result := store.QuizResult{
		Mode:     string(mode),
		Score:    stats.Score,
		MaxScore: stats.MaxScore(),
		Artists:  stats.Artists,
		Titles:   stats.Titles,
		Years:    stats.Years,
		Skipped:  stats.Skipped,
		PlayedAt: d.now(),
	}

	d.record(ctx, &result, played)
	d.prompter.Finished(result)

	d.logger.Info("Quiz finished",
		zap.String("mode", result.Mode),
		zap.Int("score", result.Score),
		zap.Int("max_score", result.MaxScore),
		zap.Int("skipped", result.Skipped))

	return &result, nil
}

func (d *Driver) askSong(ctx context.Context, game *Game, position, total int, attempt core.PlaybackAttempt) error {
	for range StepsPerSong {
		q, err := game.Question()
		if err != nil {
			return err
		}

		progress := Progress{
			Song:   position,
			Songs:  total,
			Step:   q.Step,
			Score:  game.Stats().Score,
			Played: attempt,
		}

		for {
			choice, err := d.prompter.Ask(ctx, q, progress)
			if err != nil {
				return fmt.Errorf("failed to read answer: %w", err)
			}

			correct, err := game.Answer(choice)
			if errors.Is(err, ErrInvalidChoice) {
				continue
			}
			if err != nil {
				return err
			}

			d.prompter.Reveal(Reveal{Question: q, Choice: choice, Correct: correct})
			break
		}
	}
	return nil
}

// record stores the result and the played tracks. Failures are only logged.
func (d *Driver) record(ctx context.Context, result *store.QuizResult, played []string) {
	if d.recorder == nil {
		return
	}

	id, err := d.recorder.Record(ctx, *result)
	if err != nil {
		d.logger.Warn("Failed to record quiz result", zap.Error(err))
	} else {
		result.ID = id
	}

	if len(played) == 0 {
		return
	}
	if err := d.recorder.RecordPlays(ctx, played); err != nil {
		d.logger.Warn("Failed to record played tracks", zap.Error(err))
	}
}
