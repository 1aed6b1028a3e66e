package i18n

// dutchMessages contains all Dutch translations.
var dutchMessages = map[string]string{
	// Error messages
	"error.generic":                   "Er ging iets mis. Probeer het opnieuw.",
	"error.spotify.not_authenticated": "Spotify is niet verbonden. Log eerst in.",
	"error.songs.none_playable":       "❌ Geen nummers met Spotify ID beschikbaar. Probeer de song database bij te werken.",
	"error.songs.invalid_id":          "Ongeldige Spotify ID! Controleer of het ID correct is.",
	"error.input.choice":              "Kies een nummer tussen 1 en %d.",

	// Quiz
	"quiz.mode.easy":              "Makkelijk (%d nummers)",
	"quiz.mode.medium":            "Gemiddeld (%d nummers)",
	"quiz.mode.hard":              "Moeilijk (%d nummers)",
	"quiz.question.artist":        "🎤 Wie is de artiest?",
	"quiz.question.title":         "🎵 Wat is de titel?",
	"quiz.question.year":          "📅 Uit welk jaar?",
	"quiz.prompt.choice":          "Jouw antwoord (1-%d): ",
	"quiz.progress":               "Nummer %d/%d · Vraag %d/3 · Score %d",
	"quiz.result.correct":         "✅ Correct!",
	"quiz.result.wrong":           "❌ Fout!",
	"quiz.detail.artist":          "Artiest: %s",
	"quiz.detail.title":           "Titel: %s",
	"quiz.detail.year":            "Jaar: %d",
	"quiz.skipped":                "⏭️ %s - %s overgeslagen: %s",
	"quiz.final.score":            "Eindscore: %d/%d (%d%%)",
	"quiz.final.artists":          "Artiesten goed: %d/%d",
	"quiz.final.titles":           "Titels goed: %d/%d",
	"quiz.final.years":            "Jaren goed: %d/%d",
	"quiz.final.skipped":          "Overgeslagen nummers: %d",
	"quiz.best.header":            "🏅 Beste scores (%s)",
	"quiz.best.entry":             "%d. %d/%d (%d%%) op %s",
	"quiz.encouragement.legend":   "🏆 Perfect! Je bent een échte Hitster legende! 🏆",
	"quiz.encouragement.expert":   "🌟 Geweldig! Je bent een muziekkenner! 🌟",
	"quiz.encouragement.good":     "🎵 Goed gedaan! Je kent je muziek! 🎵",
	"quiz.encouragement.practice": "🎶 Niet slecht! Blijf oefenen! 🎶",
	"quiz.encouragement.learn":    "💪 Nog veel te leren! Probeer het nog eens! 💪",

	// Playback failure reasons
	"playback.reason.timeout":             "De preview laadde niet op tijd",
	"playback.reason.audio_play_failed":   "De preview kon niet gestart worden",
	"playback.reason.mobile_not_playing":  "De preview speelt niet af",
	"playback.reason.no_preview":          "Geen preview beschikbaar",
	"playback.reason.player_not_ready":    "De Spotify speler is niet klaar",
	"playback.reason.track_not_found":     "Nummer niet gevonden op Spotify",
	"playback.reason.premium_required":    "Spotify Premium vereist",
	"playback.reason.spotify_unavailable": "Spotify is tijdelijk niet beschikbaar",
	"playback.reason.playback_failed":     "Afspelen mislukt",
	"playback.reason.network_error":       "Netwerkfout",
	"playback.reason.no_active_device":    "Geen actief Spotify apparaat gevonden",
	"playback.reason.not_playing":         "Playback niet gestart",
	"playback.reason.wrong_track":         "Verkeerd nummer wordt afgespeeld",
	"playback.reason.local_file":          "Lokaal bestand, niet beschikbaar",

	// Lookup tool
	"lookup.progress":          "Zoeken naar: %s - %s (%d/%d, %d%%)",
	"lookup.result.found":      "✅ %s - %s → %s - %s (%d%% match, %s)",
	"lookup.result.not_found":  "❌ %s - %s niet gevonden",
	"lookup.summary":           "Totaal: %d · Gevonden: %d · Niet gevonden: %d · Gemiddelde zekerheid: %d%%",
	"lookup.saved":             "✅ %d nummers opgeslagen (backup: %s, tijd: %s)",
	"lookup.confidence.high":   "hoog",
	"lookup.confidence.medium": "gemiddeld",
	"lookup.confidence.low":    "laag",
	"lookup.preview.primary":   "Spotify preview",
	"lookup.preview.secondary": "Deezer preview",
	"lookup.preview.none":      "geen preview",

	// Format helpers
	"format.song": "%s - %s (%d)",
}
