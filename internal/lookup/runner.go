// Package lookup resolves a song list against the primary provider, one song
// at a time, and fills in missing previews from the secondary provider.
package lookup

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/match"
	"hitstertrainer/pkg/fuzzy"
)

// PreviewResolver fills in a secondary preview when the match has none.
type PreviewResolver interface {
	ResolvePreview(ctx context.Context, m core.MatchResult, artist, title string) core.MatchResult
}

type Runner struct {
	primary    core.TrackSearcher
	previews   PreviewResolver
	pacing     time.Duration
	normalizer *fuzzy.Normalizer
	logger     *zap.Logger

	// OnResult, when set, is called after each song is resolved.
	OnResult func(Result)
}

// NewRunner waits the full pacing interval after each song before the next
// one is searched, however long the song took. A non-positive pacing runs the
// batch back to back.
func NewRunner(primary core.TrackSearcher, previews PreviewResolver, pacing time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		primary:    primary,
		previews:   previews,
		pacing:     pacing,
		normalizer: fuzzy.NewNormalizer(),
		logger:     logger,
	}
}

// Run processes songs strictly in order. When ctx is canceled the report holds
// the songs processed so far and ctx's error is returned.
func (r *Runner) Run(ctx context.Context, songs []core.Song, progress ProgressFunc) (*Report, error) {
	report := &Report{
		Results: make([]Result, 0, len(songs)),
		Stats:   Stats{Total: len(songs)},
	}

	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if progress != nil {
			progress(Progress{
				Index:   i,
				Total:   len(songs),
				Percent: int(math.Round(float64(i+1) / float64(len(songs)) * 100)),
				Song:    song,
			})
		}

		result := Result{Original: song, Status: core.StatusNotFound}
		m, err := r.Lookup(ctx, song)
		if err != nil && ctx.Err() != nil {
			return report, ctx.Err()
		}
		if m != nil {
			result.Match = m
			result.Status = core.StatusFound
			report.Stats.Found++
			report.Stats.TotalConfidence += m.Confidence
		} else {
			report.Stats.NotFound++
		}

		report.Results = append(report.Results, result)
		if r.OnResult != nil {
			r.OnResult(result)
		}

		if i < len(songs)-1 {
			if err := pause(ctx, r.pacing); err != nil {
				return report, err
			}
		}
	}

	r.logger.Info("Lookup finished",
		zap.Int("total", report.Stats.Total),
		zap.Int("found", report.Stats.Found),
		zap.Int("not_found", report.Stats.NotFound),
		zap.Int("average_confidence", report.Stats.AverageConfidence()))

	return report, nil
}

// Lookup resolves a single song. A nil match means not found; the error is
// only informative and has already been logged.
func (r *Runner) Lookup(ctx context.Context, song core.Song) (*core.MatchResult, error) {
	candidates, err := r.search(ctx, song.Artist, song.Title)
	if err != nil {
		r.logger.Warn("Primary search failed",
			zap.String("artist", song.Artist),
			zap.String("title", song.Title),
			zap.Error(err))
		return nil, err
	}

	if len(candidates) == 0 {
		if cleaned, changed := r.normalizer.CleanTitle(song.Title); changed {
			r.logger.Debug("No results, retrying with cleaned title",
				zap.String("title", song.Title),
				zap.String("cleaned", cleaned))
			candidates, err = r.search(ctx, song.Artist, cleaned)
			if err != nil {
				r.logger.Warn("Primary retry search failed",
					zap.String("artist", song.Artist),
					zap.String("title", cleaned),
					zap.Error(err))
				return nil, err
			}
		}
	}

	best := match.SelectBest(candidates, song)
	if best == nil {
		r.logger.Debug("No match",
			zap.String("artist", song.Artist),
			zap.String("title", song.Title),
			zap.Int("candidates", len(candidates)))
		return nil, nil
	}

	if best.PreviewURL == "" && r.previews != nil {
		resolved := r.previews.ResolvePreview(ctx, *best, song.Artist, song.Title)
		best = &resolved
	}

	r.logger.Debug("Match found",
		zap.String("artist", song.Artist),
		zap.String("title", song.Title),
		zap.String("track_id", best.TrackID),
		zap.Int("confidence", best.Confidence),
		zap.Bool("has_preview", best.Preview() != ""))

	return best, nil
}

// Override replaces the match at index with the track the user picked by id.
// The report is left untouched when the track cannot be fetched.
func (r *Runner) Override(ctx context.Context, report *Report, index int, trackID string) error {
	if index < 0 || index >= len(report.Results) {
		return fmt.Errorf("%w: %d", core.ErrSongIndex, index)
	}
	if trackID == "" {
		return fmt.Errorf("empty track id")
	}

	candidate, err := r.primary.Candidate(ctx, trackID)
	if err != nil {
		return fmt.Errorf("failed to verify track %s: %w", trackID, err)
	}

	result := &report.Results[index]
	if result.Status == core.StatusFound && result.Match != nil {
		report.Stats.TotalConfidence -= result.Match.Confidence
	} else {
		report.Stats.NotFound--
		report.Stats.Found++
	}

	result.Match = match.Exact(candidate)
	result.Status = core.StatusFound
	report.Stats.TotalConfidence += result.Match.Confidence

	r.logger.Info("Match overridden",
		zap.Int("index", index),
		zap.String("track_id", trackID))
	return nil
}

func (r *Runner) search(ctx context.Context, artist, title string) ([]core.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.primary.SearchCandidates(ctx, artist, title)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FinalSongs converts a report into the song list that gets persisted.
func FinalSongs(report *Report) []core.Song {
	songs := make([]core.Song, 0, len(report.Results))
	for _, result := range report.Results {
		song := core.Song{
			Artist: result.Original.Artist,
			Title:  result.Original.Title,
			Year:   result.Original.Year,
		}
		if result.Match != nil {
			song.TrackID = result.Match.TrackID
			song.PreviewURL = result.Match.PreviewURL
			song.SecondaryPreviewURL = result.Match.SecondaryPreviewURL
		}
		songs = append(songs, song)
	}
	return songs
}
