package match

import (
	"fmt"
	"testing"

	"hitstertrainer/internal/core"
)

func TestSelectBest_Empty(t *testing.T) {
	if got := SelectBest(nil, queen); got != nil {
		t.Errorf("SelectBest(nil) = %+v, want nil", got)
	}
	if got := SelectBest([]core.Candidate{}, queen); got != nil {
		t.Errorf("SelectBest([]) = %+v, want nil", got)
	}
}

func TestSelectBest_ZeroScoreIsNotFound(t *testing.T) {
	candidates := []core.Candidate{
		candidate("Abba", "Waterloo", "1950"),
		candidate("Metallica", "One", "1990"),
	}

	if got := SelectBest(candidates, queen); got != nil {
		t.Errorf("SelectBest() = %+v, want nil when every candidate scores 0", got)
	}
}

func TestSelectBest_PicksHighest(t *testing.T) {
	candidates := []core.Candidate{
		candidate("Queen", "Bohemian Rhapsody - Live", "1986"),
		candidate("Queen", "Bohemian Rhapsody", "1975"),
		candidate("Queen", "Bohemian Rhapsody", "1977"),
	}
	candidates[1].PreviewURL = "https://p.scdn.co/mp3-preview/abc"
	candidates[1].ImageURL = "https://i.scdn.co/image/abc"

	best := SelectBest(candidates, queen)
	if best == nil {
		t.Fatal("SelectBest() returned nil")
	}

	if best.TrackID != candidates[1].TrackID {
		t.Errorf("SelectBest() picked %q, want %q", best.TrackID, candidates[1].TrackID)
	}
	if best.Confidence != 100 {
		t.Errorf("Confidence = %d, want 100", best.Confidence)
	}
	if best.PreviewURL != candidates[1].PreviewURL || best.ImageURL != candidates[1].ImageURL {
		t.Errorf("match did not carry candidate assets: %+v", best)
	}

	for _, c := range candidates {
		if Score(c, queen) > best.Confidence {
			t.Errorf("candidate %q scores higher than the selected match", c.TrackID)
		}
	}
}

func TestSelectBest_FirstWinsTies(t *testing.T) {
	first := candidate("Queen", "Bohemian Rhapsody", "1975")
	first.TrackID = "first"
	second := candidate("Queen", "Bohemian Rhapsody", "1975")
	second.TrackID = "second"

	best := SelectBest([]core.Candidate{first, second}, queen)
	if best == nil || best.TrackID != "first" {
		t.Errorf("SelectBest() = %+v, want the earlier candidate on ties", best)
	}
}

func TestSelectBest_OnlyFirstTenConsidered(t *testing.T) {
	var candidates []core.Candidate
	for i := 0; i < MaxCandidates; i++ {
		c := candidate("Queen", fmt.Sprintf("Other Song %d", i), "1990")
		candidates = append(candidates, c)
	}
	candidates = append(candidates, candidate("Queen", "Bohemian Rhapsody", "1975"))

	best := SelectBest(candidates, queen)
	if best == nil {
		t.Fatal("SelectBest() returned nil")
	}
	if best.Confidence == 100 {
		t.Error("SelectBest() considered a candidate beyond the first ten")
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		confidence int
		expected   ConfidenceBand
	}{
		{100, BandHigh},
		{80, BandHigh},
		{79, BandMedium},
		{60, BandMedium},
		{59, BandLow},
		{0, BandLow},
	}

	for _, tt := range tests {
		if got := Band(tt.confidence); got != tt.expected {
			t.Errorf("Band(%d) = %s, want %s", tt.confidence, got, tt.expected)
		}
	}
}

func TestExact(t *testing.T) {
	c := candidate("Queen", "Bohemian Rhapsody", "1975")
	m := Exact(&c)
	if m.Confidence != MaxScore || m.TrackID != c.TrackID {
		t.Errorf("Exact() = %+v", m)
	}
}
