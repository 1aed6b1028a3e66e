package lookup

import (
	"math"

	"hitstertrainer/internal/core"
)

// Result is the outcome for one input song.
type Result struct {
	Original core.Song         `json:"original"`
	Match    *core.MatchResult `json:"match"`
	Status   core.LookupStatus `json:"status"`
}

type Stats struct {
	Total           int `json:"total"`
	Found           int `json:"found"`
	NotFound        int `json:"notFound"`
	TotalConfidence int `json:"totalConfidence"`
}

// AverageConfidence is the rounded mean confidence of found songs, 0 when
// nothing was found.
func (s Stats) AverageConfidence() int {
	if s.Found == 0 {
		return 0
	}
	return int(math.Round(float64(s.TotalConfidence) / float64(s.Found)))
}

// Report is owned by the caller of Run; Override mutates it in place.
type Report struct {
	Results []Result `json:"results"`
	Stats   Stats    `json:"stats"`
}

// Progress is reported before each song is searched.
type Progress struct {
	Index   int       `json:"index"`
	Total   int       `json:"total"`
	Percent int       `json:"percent"`
	Song    core.Song `json:"song"`
}

type ProgressFunc func(Progress)
