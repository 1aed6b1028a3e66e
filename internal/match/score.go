// Package match scores provider search candidates against a target song and
// picks the best one.
package match

import (
	"strings"

	"hitstertrainer/internal/core"
	"hitstertrainer/pkg/fuzzy"
)

const (
	// MaxArtistScore is awarded for an exact normalized artist match
	MaxArtistScore = 40
	// MaxTitleScore is awarded for an exact normalized title match
	MaxTitleScore = 40
	// MaxYearScore is awarded when the release year equals the target year
	MaxYearScore = 20
	// PartialTextScore is awarded when one normalized string contains the other
	PartialTextScore = 25
	// MaxScore is the highest possible confidence
	MaxScore = MaxArtistScore + MaxTitleScore + MaxYearScore
)

var normalizer = fuzzy.NewNormalizer()

// Breakdown holds the three independent sub-scores of a confidence score.
type Breakdown struct {
	Artist int
	Title  int
	Year   int
}

func (b Breakdown) Total() int {
	return b.Artist + b.Title + b.Year
}

// Score maps a candidate and a target song to a confidence in [0, 100].
func Score(candidate core.Candidate, target core.Song) int {
	return ScoreBreakdown(candidate, target).Total()
}

func ScoreBreakdown(candidate core.Candidate, target core.Song) Breakdown {
	return Breakdown{
		Artist: textScore(candidate.ArtistName, target.Artist, MaxArtistScore),
		Title:  textScore(candidate.Name, target.Title, MaxTitleScore),
		Year:   YearScore(candidate.ReleaseYear(), target.Year),
	}
}

// TextMatches is the boolean form of the artist/title rule: equal or
// containing each other after normalization.
func TextMatches(a, b string) bool {
	return textScore(a, b, MaxArtistScore) > 0
}

func textScore(a, b string, exact int) int {
	na, nb := normalizer.Compact(a), normalizer.Compact(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return exact
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return PartialTextScore
	}
	return 0
}

// YearScore awards up to 20 points by absolute year difference. An unknown
// year on either side scores nothing.
func YearScore(candidateYear, targetYear int) int {
	if candidateYear <= 0 || targetYear <= 0 {
		return 0
	}

	diff := candidateYear - targetYear
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return 20
	case diff <= 1:
		return 15
	case diff <= 2:
		return 10
	case diff <= 5:
		return 5
	default:
		return 0
	}
}
