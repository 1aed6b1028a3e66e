package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hitstertrainer/internal/audio"
	"hitstertrainer/internal/core"
	"hitstertrainer/internal/debuglog"
	"hitstertrainer/internal/deezer"
	"hitstertrainer/internal/fallback"
	"hitstertrainer/internal/flood"
	httpserver "hitstertrainer/internal/http"
	"hitstertrainer/internal/i18n"
	"hitstertrainer/internal/lookup"
	"hitstertrainer/internal/match"
	"hitstertrainer/internal/playback"
	"hitstertrainer/internal/quiz"
	"hitstertrainer/internal/spotify"
	"hitstertrainer/internal/store"
	"hitstertrainer/pkg/text"
)

const (
	// recentCapacity is how many played tracks the quiz avoids repeating
	recentCapacity = 200
	recentFPRate   = 0.01
	bestScores     = 5
	authTimeout    = 5 * time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve a song list against Spotify and fill in previews",
		RunE:  runLookup,
	}
	cmd.Flags().String("input", "", "JSON song list to resolve (default: the song database)")
	cmd.Flags().Bool("save", false, "Write the resolved songs to the song database")
	cmd.Flags().StringSlice("override", nil, "Replace a match by hand, as <index>=<spotify id or link> (1-based)")
	return cmd
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Play a quiz round in the terminal",
		RunE:  runQuiz,
	}
	cmd.Flags().String("mode", "", "Quiz mode (easy, medium, hard; default from --quiz-mode)")
	cmd.Flags().Bool("mobile", false, "Play previews instead of controlling a Spotify device")
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	spotifyEnabled := config.Spotify.ClientID != ""
	if err := validateConfig(spotifyEnabled); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting Hitster Trainer",
		zap.String("language", config.App.Language),
		zap.String("songs_path", config.Store.SongsPath),
		zap.Bool("spotify_enabled", spotifyEnabled))

	floodgate := flood.New(config.Server.FloodLimit)
	defer floodgate.Stop()

	sink := debuglog.NewSink(config.Server.DebugLogPath)
	defer sink.Close()

	deezerClient := deezer.NewClient(&config.Deezer, logger.Named("deezer"))
	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	authorizer := spotify.NewAuthorizer(&config.Spotify)

	songs := store.NewSongStore(&config.Store, logger.Named("store"))
	runner := newLookupRunner(spotifyClient, deezerClient)

	deps := httpserver.Deps{
		Songs:     songs,
		Relay:     deezerClient,
		Debug:     sink,
		Remote:    spotifyClient,
		NewAudio:  func() core.AudioElement { return audio.NewElement() },
		Floodgate: floodgate,
		DeviceID:  config.Spotify.DeviceID,
	}
	if spotifyEnabled {
		deps.Lookup = runner
		deps.Callback = authorizer
	}

	server := httpserver.NewServer(&config.Server, &config.App, deps, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	if spotifyEnabled {
		g.Go(func() error {
			return spotifyClient.Authenticate(gCtx, authorizer)
		})
	} else {
		logger.Warn("Spotify client ID not set, lookups and remote playback are disabled")
	}

	logger.Info("Hitster Trainer started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("Hitster Trainer stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Hitster Trainer stopped gracefully")
	return nil
}

func runLookup(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if err := validateConfig(true); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	localizer := i18n.NewLocalizer(config.App.Language)
	out := cmd.OutOrStdout()
	songStore := store.NewSongStore(&config.Store, logger.Named("store"))

	input, _ := cmd.Flags().GetString("input")
	songs, err := loadSongs(input, songStore)
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(cmd)
	if err != nil {
		return err
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := authenticate(ctx, spotifyClient); err != nil {
		return err
	}

	runner := newLookupRunner(spotifyClient, deezer.NewClient(&config.Deezer, logger.Named("deezer")))
	runner.OnResult = func(result lookup.Result) {
		fmt.Fprintln(out, resultLine(localizer, result))
	}

	report, err := runner.Run(ctx, songs, func(p lookup.Progress) {
		fmt.Fprintln(out, localizer.T("lookup.progress", p.Song.Artist, p.Song.Title, p.Index+1, p.Total, p.Percent))
	})
	if err != nil {
		return fmt.Errorf("lookup interrupted after %d songs: %w", len(report.Results), err)
	}

	for index, trackID := range overrides {
		if err := runner.Override(ctx, report, index, trackID); err != nil {
			fmt.Fprintln(out, localizer.T("error.songs.invalid_id"))
			logger.Warn("Override failed",
				zap.Int("index", index),
				zap.String("track_id", trackID),
				zap.Error(err))
			continue
		}
		fmt.Fprintln(out, resultLine(localizer, report.Results[index]))
	}

	fmt.Fprintln(out, localizer.T("lookup.summary",
		report.Stats.Total, report.Stats.Found, report.Stats.NotFound, report.Stats.AverageConfidence()))

	if save, _ := cmd.Flags().GetBool("save"); save {
		result, err := songStore.Save(lookup.FinalSongs(report))
		if err != nil {
			return fmt.Errorf("failed to save songs: %w", err)
		}
		fmt.Fprintln(out, localizer.T("lookup.saved", result.SongCount, result.Backup, result.Timestamp))
	}

	return nil
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	mobile, _ := cmd.Flags().GetBool("mobile")
	if err := validateConfig(!mobile); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	modeName, _ := cmd.Flags().GetString("mode")
	if modeName == "" {
		modeName = config.App.QuizMode
	}
	mode := quiz.ParseMode(modeName)

	localizer := i18n.NewLocalizer(config.App.Language)
	out := cmd.OutOrStdout()

	songs, err := store.NewSongStore(&config.Store, logger.Named("store")).Songs()
	if err != nil {
		return err
	}

	history, err := store.OpenHistory(config.Store.HistoryPath)
	if err != nil {
		return err
	}
	defer history.Close()

	recent := store.NewRecentPlays(recentCapacity, recentFPRate)
	if ids, err := history.RecentTrackIDs(ctx, recentCapacity); err != nil {
		logger.Warn("Failed to load recent plays", zap.Error(err))
	} else {
		recent.Load(ids)
	}

	session, err := newQuizSession(ctx, mobile)
	if err != nil {
		return err
	}

	prompter := quiz.NewTerminalPrompter(cmd.InOrStdin(), out, localizer)
	driver := quiz.NewDriver(session, prompter, history, recent, nil, logger.Named("quiz"))

	result, err := driver.Run(ctx, mode, songs)
	if errors.Is(err, quiz.ErrNoPlayableSongs) {
		fmt.Fprintln(out, localizer.T("error.songs.none_playable"))
		return nil
	}
	if err != nil {
		return err
	}

	if err := session.Pause(ctx); err != nil {
		logger.Debug("Pause after quiz failed", zap.Error(err))
	}

	best, err := history.Best(ctx, result.Mode, bestScores)
	if err != nil {
		logger.Warn("Failed to load best scores", zap.Error(err))
		return nil
	}
	for _, line := range bestLines(localizer, result.Mode, best) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// newQuizSession builds the playback session the terminal quiz plays through.
// Desktop sessions are bound to the configured device, or to the active one.
func newQuizSession(ctx context.Context, mobile bool) (*playback.Session, error) {
	id := "terminal"
	if mobile {
		return playback.NewSession(id, core.DeviceMobile, nil, audio.NewElement(), &config.App,
			logger.Named("playback")), nil
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := authenticate(ctx, spotifyClient); err != nil {
		return nil, err
	}

	deviceID, err := spotifyClient.PickDevice(ctx, config.Spotify.DeviceID)
	if err != nil {
		return nil, err
	}

	session := playback.NewSession(id, core.DeviceDesktop, spotifyClient, nil, &config.App, logger.Named("playback"))
	session.Ready.Resolve(deviceID)
	return session, nil
}

// authenticate serves the OAuth callback only for as long as the flow runs.
func authenticate(ctx context.Context, client *spotify.Client) error {
	authorizer := spotify.NewAuthorizer(&config.Spotify)

	mux := http.NewServeMux()
	mux.Handle("/callback", authorizer)
	callback := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: config.Server.ReadTimeout,
	}

	go func() {
		if err := callback.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("OAuth callback server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = callback.Shutdown(shutdownCtx)
	}()

	authCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	if err := client.Authenticate(authCtx, authorizer); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}
	return nil
}

func newLookupRunner(primary core.TrackSearcher, secondary core.PreviewSearcher) *lookup.Runner {
	chain := fallback.NewChain(secondary, logger.Named("fallback"))
	return lookup.NewRunner(primary, chain, config.App.SearchPacing, logger.Named("lookup"))
}

// loadSongs reads a song list, or the song database when path is empty. Files
// ending in .json hold a JSON array; anything else is one "Artist - Title
// (Year)" per line. "-" reads JSON from stdin.
func loadSongs(path string, songStore *store.SongStore) ([]core.Song, error) {
	if path == "" {
		return songStore.Songs()
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open song list: %w", err)
		}
		defer f.Close()
		r = f

		if !strings.EqualFold(filepath.Ext(path), ".json") {
			return text.ParseSongList(r)
		}
	}

	var songs []core.Song
	if err := json.NewDecoder(r).Decode(&songs); err != nil {
		return nil, fmt.Errorf("failed to decode song list: %w", err)
	}
	return songs, nil
}

// parseOverrides reads --override values into 0-based indexes.
func parseOverrides(cmd *cobra.Command) (map[int]string, error) {
	values, _ := cmd.Flags().GetStringSlice("override")
	overrides := make(map[int]string, len(values))
	for _, value := range values {
		index, trackID, ok := strings.Cut(value, "=")
		if !ok || strings.TrimSpace(trackID) == "" {
			return nil, fmt.Errorf("invalid override %q, expected <index>=<spotify id>", value)
		}
		n, err := strconv.Atoi(strings.TrimSpace(index))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid override index %q", index)
		}
		id, err := text.ParseTrackID(trackID)
		if err != nil {
			return nil, err
		}
		overrides[n-1] = id
	}
	return overrides, nil
}

func resultLine(localizer *i18n.Localizer, result lookup.Result) string {
	if result.Match == nil {
		return localizer.T("lookup.result.not_found", result.Original.Artist, result.Original.Title)
	}

	m := result.Match
	preview := "lookup.preview.none"
	switch {
	case m.PreviewURL != "":
		preview = "lookup.preview.primary"
	case m.SecondaryPreviewURL != "":
		preview = "lookup.preview.secondary"
	}

	confidence := localizer.T("lookup.confidence." + string(match.Band(m.Confidence)))
	return localizer.T("lookup.result.found",
		result.Original.Artist, result.Original.Title,
		m.Artist, m.Name,
		m.Confidence,
		confidence+", "+localizer.T(preview))
}

func bestLines(localizer *i18n.Localizer, mode string, results []store.QuizResult) []string {
	if len(results) == 0 {
		return nil
	}
	lines := []string{"", localizer.T("quiz.best.header",
		localizer.T("quiz.mode."+mode, quiz.ParseMode(mode).SongCount()))}
	for i, r := range results {
		lines = append(lines, localizer.T("quiz.best.entry",
			i+1, r.Score, r.MaxScore, r.Percentage(), r.PlayedAt.Local().Format(store.TimestampLayout)))
	}
	return lines
}
