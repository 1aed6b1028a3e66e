package match

import (
	"hitstertrainer/internal/core"
)

// MaxCandidates bounds how many search results are considered.
const MaxCandidates = 10

type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// Band groups a confidence for display: high from 80, medium from 60.
func Band(confidence int) ConfidenceBand {
	switch {
	case confidence >= 80:
		return BandHigh
	case confidence >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

// SelectBest returns the highest scoring candidate among the first
// MaxCandidates. Earlier candidates win ties. It returns nil when the list is
// empty or when no candidate scores above zero.
func SelectBest(candidates []core.Candidate, target core.Song) *core.MatchResult {
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	var best *core.MatchResult
	highest := 0

	for i := range candidates {
		score := Score(candidates[i], target)
		if score > highest {
			highest = score
			best = newMatchResult(&candidates[i], score)
		}
	}

	return best
}

// Exact builds a match for a candidate chosen by hand, which is trusted fully.
func Exact(candidate *core.Candidate) *core.MatchResult {
	return newMatchResult(candidate, MaxScore)
}

func newMatchResult(c *core.Candidate, confidence int) *core.MatchResult {
	return &core.MatchResult{
		TrackID:     c.TrackID,
		Name:        c.Name,
		Artist:      c.ArtistName,
		Album:       c.AlbumName,
		ReleaseDate: c.ReleaseDate,
		ImageURL:    c.ImageURL,
		Confidence:  confidence,
		PreviewURL:  c.PreviewURL,
	}
}
