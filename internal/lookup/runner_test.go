package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/fallback"
)

type fakeSearcher struct {
	results  map[string][]core.Candidate
	errs     map[string]error
	tracks   map[string]*core.Candidate
	searches []string
	at       []time.Time
	done     []time.Time
	latency  time.Duration
}

func (f *fakeSearcher) SearchCandidates(_ context.Context, artist, title string) ([]core.Candidate, error) {
	key := artist + "|" + title
	f.searches = append(f.searches, key)
	f.at = append(f.at, time.Now())
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	f.done = append(f.done, time.Now())
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeSearcher) Candidate(_ context.Context, trackID string) (*core.Candidate, error) {
	if c, ok := f.tracks[trackID]; ok {
		return c, nil
	}
	return nil, &core.RemoteError{Status: 404, Message: "non existing id"}
}

type fakeSecondary struct {
	candidates []core.Candidate
	queries    []string
}

func (f *fakeSecondary) SearchTracks(_ context.Context, query string) ([]core.Candidate, error) {
	f.queries = append(f.queries, query)
	return f.candidates, nil
}

var (
	queen  = core.Song{Artist: "Queen", Title: "Bohemian Rhapsody", Year: 1975}
	abba   = core.Song{Artist: "ABBA", Title: "Dancing Queen", Year: 1976}
	nobody = core.Song{Artist: "Nobody", Title: "Nothing", Year: 2000}
)

func newSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: map[string][]core.Candidate{
			"Queen|Bohemian Rhapsody": {
				{TrackID: "q-live", Name: "Bohemian Rhapsody - Live", ArtistName: "Queen", ReleaseDate: "1986-07-12"},
				{TrackID: "q-1975", Name: "Bohemian Rhapsody", ArtistName: "Queen", ReleaseDate: "1975-10-31", PreviewURL: "https://p.scdn.co/q"},
			},
			"ABBA|Dancing Queen": {
				{TrackID: "abba", Name: "Dancing Queen", ArtistName: "ABBA", ReleaseDate: "1977-01-01"},
			},
		},
		errs: map[string]error{},
		tracks: map[string]*core.Candidate{
			"manual": {TrackID: "manual", Name: "Nothing", ArtistName: "Nobody", ReleaseDate: "2000", PreviewURL: "https://p.scdn.co/m"},
		},
	}
}

func TestRunner_Run(t *testing.T) {
	searcher := newSearcher()
	secondary := &fakeSecondary{candidates: []core.Candidate{
		{ArtistName: "ABBA", Name: "Dancing Queen", PreviewURL: "https://dz/abba.mp3"},
	}}
	runner := NewRunner(searcher, fallback.NewChain(secondary, zap.NewNop()), 0, zap.NewNop())

	var progress []Progress
	report, err := runner.Run(context.Background(), []core.Song{queen, abba, nobody}, func(p Progress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(report.Results))
	}

	first := report.Results[0]
	if first.Status != core.StatusFound || first.Match.TrackID != "q-1975" || first.Match.Confidence != 100 {
		t.Errorf("Results[0] = %+v %+v", first, first.Match)
	}
	if first.Match.SecondaryPreviewURL != "" {
		t.Error("primary preview present, secondary must not be looked up")
	}

	second := report.Results[1]
	if second.Status != core.StatusFound || second.Match.Confidence != 95 {
		t.Errorf("Results[1] = %+v %+v", second, second.Match)
	}
	if second.Match.SecondaryPreviewURL != "https://dz/abba.mp3" {
		t.Errorf("SecondaryPreviewURL = %q", second.Match.SecondaryPreviewURL)
	}
	if len(secondary.queries) != 1 || secondary.queries[0] != "ABBA Dancing Queen" {
		t.Errorf("secondary queries = %v", secondary.queries)
	}

	third := report.Results[2]
	if third.Status != core.StatusNotFound || third.Match != nil {
		t.Errorf("Results[2] = %+v", third)
	}

	want := Stats{Total: 3, Found: 2, NotFound: 1, TotalConfidence: 195}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}
	if avg := report.Stats.AverageConfidence(); avg != 98 {
		t.Errorf("AverageConfidence() = %d, want 98", avg)
	}

	wantPercent := []int{33, 67, 100}
	if len(progress) != 3 {
		t.Fatalf("progress calls = %d, want 3", len(progress))
	}
	for i, p := range progress {
		if p.Index != i || p.Total != 3 || p.Percent != wantPercent[i] || p.Song != []core.Song{queen, abba, nobody}[i] {
			t.Errorf("progress[%d] = %+v", i, p)
		}
	}
}

func TestRunner_SearchErrorIsNotFound(t *testing.T) {
	searcher := newSearcher()
	searcher.errs["Queen|Bohemian Rhapsody"] = &core.RemoteError{Status: 500}
	runner := NewRunner(searcher, nil, 0, zap.NewNop())

	var seen []Result
	runner.OnResult = func(r Result) { seen = append(seen, r) }

	report, err := runner.Run(context.Background(), []core.Song{queen, abba}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Results[0].Status != core.StatusNotFound {
		t.Errorf("failed search should be notfound, got %v", report.Results[0].Status)
	}
	if report.Results[1].Status != core.StatusFound {
		t.Errorf("batch should continue after a failure, got %v", report.Results[1].Status)
	}
	if len(seen) != 2 {
		t.Errorf("OnResult called %d times, want 2", len(seen))
	}
}

func TestRunner_EmptyReport(t *testing.T) {
	runner := NewRunner(newSearcher(), nil, 0, zap.NewNop())

	report, err := runner.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Stats.AverageConfidence() != 0 || report.Stats.Total != 0 {
		t.Errorf("Stats = %+v", report.Stats)
	}
}

func TestRunner_RetryWithCleanedTitle(t *testing.T) {
	searcher := newSearcher()
	searcher.results["Queen|Bohemian Rhapsody (Remastered 2011)"] = nil
	runner := NewRunner(searcher, nil, 0, zap.NewNop())

	song := core.Song{Artist: "Queen", Title: "Bohemian Rhapsody (Remastered 2011)", Year: 1975}
	m, err := runner.Lookup(context.Background(), song)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if m == nil || m.TrackID != "q-1975" {
		t.Fatalf("Lookup() = %+v, want q-1975", m)
	}
	want := []string{"Queen|Bohemian Rhapsody (Remastered 2011)", "Queen|Bohemian Rhapsody"}
	if len(searcher.searches) != 2 || searcher.searches[0] != want[0] || searcher.searches[1] != want[1] {
		t.Errorf("searches = %v, want %v", searcher.searches, want)
	}
}

func TestRunner_NoRetryForPlainTitle(t *testing.T) {
	searcher := newSearcher()
	runner := NewRunner(searcher, nil, 0, zap.NewNop())

	if m, _ := runner.Lookup(context.Background(), nobody); m != nil {
		t.Errorf("Lookup() = %+v, want nil", m)
	}
	if len(searcher.searches) != 1 {
		t.Errorf("searches = %v, want exactly one", searcher.searches)
	}
}

func TestRunner_Pacing(t *testing.T) {
	tests := []struct {
		name    string
		pacing  time.Duration
		latency time.Duration
	}{
		{"fast searches", 40 * time.Millisecond, 0},
		{"searches slower than pacing", 40 * time.Millisecond, 60 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := newSearcher()
			searcher.latency = tt.latency
			runner := NewRunner(searcher, nil, tt.pacing, zap.NewNop())

			if _, err := runner.Run(context.Background(), []core.Song{queen, abba, nobody}, nil); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(searcher.at) != 3 {
				t.Fatalf("searches = %v, want one per song", searcher.searches)
			}
			for i := 1; i < len(searcher.at); i++ {
				// Idle time from the end of one song to the start of the next,
				// with a little scheduler slack.
				if idle := searcher.at[i].Sub(searcher.done[i-1]); idle < tt.pacing-5*time.Millisecond {
					t.Errorf("idle gap before search %d = %v, want >= %v", i, idle, tt.pacing)
				}
			}
		})
	}
}

func TestRunner_CanceledDuringPause(t *testing.T) {
	searcher := newSearcher()
	runner := NewRunner(searcher, nil, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	runner.OnResult = func(Result) { cancel() }

	start := time.Now()
	report, err := runner.Run(ctx, []core.Song{queen, abba}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Run() kept waiting after cancellation")
	}
	if len(report.Results) != 1 || len(searcher.searches) != 1 {
		t.Errorf("results = %d, searches = %d, want 1 each", len(report.Results), len(searcher.searches))
	}
}

func TestRunner_Canceled(t *testing.T) {
	searcher := newSearcher()
	runner := NewRunner(searcher, nil, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	report, err := runner.Run(ctx, []core.Song{queen, abba, nobody}, func(p Progress) {
		if p.Index == 1 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(report.Results) != 1 {
		t.Errorf("processed %d songs, want 1 before cancellation", len(report.Results))
	}
}

func TestRunner_Override(t *testing.T) {
	searcher := newSearcher()
	runner := NewRunner(searcher, nil, 0, zap.NewNop())

	report, err := runner.Run(context.Background(), []core.Song{abba, nobody}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := runner.Override(context.Background(), report, 1, "manual"); err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	result := report.Results[1]
	if result.Status != core.StatusFound || result.Match.Confidence != 100 || result.Match.TrackID != "manual" {
		t.Errorf("Results[1] = %+v %+v", result, result.Match)
	}
	want := Stats{Total: 2, Found: 2, NotFound: 0, TotalConfidence: 195}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}

	// Overriding an already found song only replaces its confidence.
	if err := runner.Override(context.Background(), report, 0, "manual"); err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	want = Stats{Total: 2, Found: 2, NotFound: 0, TotalConfidence: 200}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}
}

func TestRunner_OverrideFailureLeavesReport(t *testing.T) {
	runner := NewRunner(newSearcher(), nil, 0, zap.NewNop())
	report, _ := runner.Run(context.Background(), []core.Song{nobody}, nil)
	before := report.Stats

	err := runner.Override(context.Background(), report, 0, "bogus")
	if status, ok := core.RemoteStatus(err); !ok || status != 404 {
		t.Errorf("Override() error = %v, want 404", err)
	}
	if report.Stats != before || report.Results[0].Status != core.StatusNotFound {
		t.Errorf("report changed after failed override: %+v", report)
	}

	if err := runner.Override(context.Background(), report, 5, "manual"); !errors.Is(err, core.ErrSongIndex) {
		t.Errorf("Override(out of range) error = %v, want ErrSongIndex", err)
	}
}

func TestFinalSongs(t *testing.T) {
	report := &Report{Results: []Result{
		{
			Original: queen,
			Match:    &core.MatchResult{TrackID: "q", PreviewURL: "https://p.scdn.co/q", Confidence: 100},
			Status:   core.StatusFound,
		},
		{
			Original: abba,
			Match:    &core.MatchResult{TrackID: "a", SecondaryPreviewURL: "https://dz/a.mp3", Confidence: 95},
			Status:   core.StatusFound,
		},
		{Original: nobody, Status: core.StatusNotFound},
	}}

	songs := FinalSongs(report)
	want := []core.Song{
		{Artist: "Queen", Title: "Bohemian Rhapsody", Year: 1975, TrackID: "q", PreviewURL: "https://p.scdn.co/q"},
		{Artist: "ABBA", Title: "Dancing Queen", Year: 1976, TrackID: "a", SecondaryPreviewURL: "https://dz/a.mp3"},
		{Artist: "Nobody", Title: "Nothing", Year: 2000},
	}
	if len(songs) != len(want) {
		t.Fatalf("len(FinalSongs()) = %d, want %d", len(songs), len(want))
	}
	for i := range want {
		if songs[i] != want[i] {
			t.Errorf("FinalSongs()[%d] = %+v, want %+v", i, songs[i], want[i])
		}
	}
}
