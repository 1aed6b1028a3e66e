package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic":                   "Something went wrong. Please try again.",
	"error.spotify.not_authenticated": "Spotify is not connected. Log in first.",
	"error.songs.none_playable":       "❌ No songs with a Spotify ID available. Update the song database first.",
	"error.songs.invalid_id":          "Invalid Spotify ID! Check that the ID is correct.",
	"error.input.choice":              "Please enter a number between 1 and %d.",

	// Quiz
	"quiz.mode.easy":              "Easy (%d songs)",
	"quiz.mode.medium":            "Medium (%d songs)",
	"quiz.mode.hard":              "Hard (%d songs)",
	"quiz.question.artist":        "🎤 Who is the artist?",
	"quiz.question.title":         "🎵 What is the title?",
	"quiz.question.year":          "📅 Which year?",
	"quiz.prompt.choice":          "Your answer (1-%d): ",
	"quiz.progress":               "Song %d/%d · Question %d/3 · Score %d",
	"quiz.result.correct":         "✅ Correct!",
	"quiz.result.wrong":           "❌ Wrong!",
	"quiz.detail.artist":          "Artist: %s",
	"quiz.detail.title":           "Title: %s",
	"quiz.detail.year":            "Year: %d",
	"quiz.skipped":                "⏭️ Skipping %s - %s: %s",
	"quiz.final.score":            "Final score: %d/%d (%d%%)",
	"quiz.final.artists":          "Artists correct: %d/%d",
	"quiz.final.titles":           "Titles correct: %d/%d",
	"quiz.final.years":            "Years correct: %d/%d",
	"quiz.final.skipped":          "Skipped songs: %d",
	"quiz.best.header":            "🏅 Best %s scores",
	"quiz.best.entry":             "%d. %d/%d (%d%%) on %s",
	"quiz.encouragement.legend":   "🏆 Perfect! You are a true Hitster legend! 🏆",
	"quiz.encouragement.expert":   "🌟 Great! You really know your music! 🌟",
	"quiz.encouragement.good":     "🎵 Well done! You know your music! 🎵",
	"quiz.encouragement.practice": "🎶 Not bad! Keep practicing! 🎶",
	"quiz.encouragement.learn":    "💪 Still a lot to learn! Try again! 💪",

	// Playback failure reasons
	"playback.reason.timeout":             "The preview did not load in time",
	"playback.reason.audio_play_failed":   "The preview could not be started",
	"playback.reason.mobile_not_playing":  "The preview is not playing",
	"playback.reason.no_preview":          "No preview available",
	"playback.reason.player_not_ready":    "The Spotify player is not ready",
	"playback.reason.track_not_found":     "Track not found on Spotify",
	"playback.reason.premium_required":    "Spotify Premium required",
	"playback.reason.spotify_unavailable": "Spotify is temporarily unavailable",
	"playback.reason.playback_failed":     "Playback failed",
	"playback.reason.network_error":       "Network error",
	"playback.reason.no_active_device":    "No active Spotify device found",
	"playback.reason.not_playing":         "Playback did not start",
	"playback.reason.wrong_track":         "The wrong song is playing",
	"playback.reason.local_file":          "Local file, not available",

	// Lookup tool
	"lookup.progress":          "Searching: %s - %s (%d/%d, %d%%)",
	"lookup.result.found":      "✅ %s - %s → %s - %s (%d%% match, %s)",
	"lookup.result.not_found":  "❌ %s - %s not found",
	"lookup.summary":           "Total: %d · Found: %d · Not found: %d · Average confidence: %d%%",
	"lookup.saved":             "✅ Saved %d songs (backup: %s, time: %s)",
	"lookup.confidence.high":   "high",
	"lookup.confidence.medium": "medium",
	"lookup.confidence.low":    "low",
	"lookup.preview.primary":   "Spotify preview",
	"lookup.preview.secondary": "Deezer preview",
	"lookup.preview.none":      "no preview",

	// Format helpers
	"format.song": "%s - %s (%d)",
}
