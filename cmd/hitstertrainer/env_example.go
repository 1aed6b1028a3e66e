package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hitstertrainer/internal/i18n"
)

const sectionRule = "# =============================================================================\n"

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

type envEntry struct {
	flag    string
	example string
	comment string
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString(sectionRule)
	content.WriteString("# Hitster Trainer Configuration\n")
	content.WriteString(sectionRule)
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	writeEnvSection(&content, cmd, "SPOTIFY - Required for lookups and remote playback", []envEntry{
		{flag: "spotify-client-id", example: "your_spotify_client_id_here", comment: "Spotify app client ID"},
		{flag: "spotify-client-secret", comment: "Client secret, optional with PKCE"},
		{flag: "spotify-redirect-url", example: defaultRedirectURL(defaultServerHost, 8080), comment: "OAuth callback URL"},
		{flag: "spotify-token-path", comment: "Token storage path"},
		{flag: "spotify-device-id", comment: "Pin remote playback to one Connect device"},
	})

	writeEnvSection(&content, cmd, "DEEZER - Preview fallback and relay", []envEntry{
		{flag: "deezer-base-url", comment: "Deezer API base URL"},
		{flag: "deezer-timeout", comment: "Request timeout"},
		{flag: "deezer-requests-per-second", comment: "Client side rate limit"},
	})

	writeEnvSection(&content, cmd, "SERVER", []envEntry{
		{flag: "server-host", comment: "HTTP server host"},
		{flag: "server-port", comment: "HTTP server port"},
		{flag: "admin-secret", example: "change_me", comment: "Secret required to update the song database"},
		{flag: "allowed-origin", comment: "CORS allowed origin"},
		{flag: "debug-log-path", comment: "Client debug log file"},
		{flag: "flood-limit-per-minute", comment: "Guarded requests per client per minute"},
		{flag: "session-ttl", comment: "Idle lifetime of a playback session"},
	})

	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	writeEnvSection(&content, cmd, "APPLICATION", []envEntry{
		{flag: "language", comment: "UI language: " + supportedLangs},
		{flag: "quiz-mode", comment: "Default quiz mode: easy, medium, hard"},
		{flag: "search-pacing", comment: "Delay between Spotify searches"},
		{flag: "metadata-timeout", comment: "Mobile preview metadata timeout"},
		{flag: "verify-delay", comment: "Delay before desktop playback is verified"},
		{flag: "mobile-grace-delay", comment: "Extra wait before mobile playback gives up"},
	})

	writeEnvSection(&content, cmd, "STORAGE", []envEntry{
		{flag: "songs-path", comment: "Song database file"},
		{flag: "backup-dir", comment: "Backups of replaced song databases"},
		{flag: "history-path", comment: "Quiz history (SQLite)"},
	})

	writeEnvSection(&content, cmd, "LOGGING", []envEntry{
		{flag: "log-level", comment: "Log level: debug, info, warn, error"},
		{flag: "log-format", comment: "Log format: json, console"},
	})

	return content.String()
}

func writeEnvSection(content *strings.Builder, cmd *cobra.Command, title string, entries []envEntry) {
	content.WriteString(sectionRule)
	content.WriteString("# " + title + "\n")
	content.WriteString(sectionRule)

	for _, entry := range entries {
		def := getDefaultValueString(cmd, entry.flag)
		value := entry.example
		if value == "" {
			value = def
		}
		comment := entry.comment
		if def != "" {
			comment += fmt.Sprintf(" (default: %s)", def)
		}
		fmt.Fprintf(content, "%s=%s  # %s\n", flagToEnvVar(entry.flag), value, comment)
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.Root().PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}
