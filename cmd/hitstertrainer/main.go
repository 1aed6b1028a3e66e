// Package main provides the Hitster Trainer CLI application entry point.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/i18n"
	"hitstertrainer/internal/quiz"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "HITSTER"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hitstertrainer",
	Short: "Hitster Trainer - music quiz and song database tools",
	Long: `Hitster Trainer resolves a song database against Spotify, fills in missing
previews from Deezer and serves the quiz backend: song database updates, the
Deezer relay, client debug logs and playback sessions.`,
	RunE: runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (json, console)")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("UI language (%s)", supportedLangs))
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret (optional with PKCE)")
	flags.String("spotify-redirect-url", "", "Spotify OAuth redirect URL (default derived from server host and port)")
	flags.String("spotify-token-path", defaults.Spotify.TokenPath, "Spotify token storage path")
	flags.String("spotify-device-id", "", "Spotify Connect device ID used for remote playback")
	flags.String("spotify-base-url", "", "Spotify Web API base URL override")

	flags.String("deezer-base-url", defaults.Deezer.BaseURL, "Deezer API base URL")
	flags.Duration("deezer-timeout", defaults.Deezer.Timeout, "Deezer request timeout")
	flags.Float64("deezer-requests-per-second", defaults.Deezer.RequestsPerSecond, "Maximum Deezer requests per second")

	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.Duration("server-read-timeout", defaults.Server.ReadTimeout, "HTTP read timeout")
	flags.Duration("server-write-timeout", defaults.Server.WriteTimeout, "HTTP write timeout")
	flags.String("admin-secret", "", "Secret required to update the song database")
	flags.String("allowed-origin", defaults.Server.AllowedOrigin, "CORS allowed origin for the relay and debug endpoints")
	flags.String("debug-log-path", defaults.Server.DebugLogPath, "Client debug log file")
	flags.Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum guarded requests per client per minute")
	flags.Duration("session-ttl", core.DefaultSessionTTL, "Idle lifetime of a playback session")

	flags.Duration("search-pacing", core.DefaultSearchPacing, "Delay between Spotify searches in a batch lookup")
	flags.Duration("metadata-timeout", core.DefaultMetadataTimeout, "How long mobile playback waits for preview metadata")
	flags.Duration("verify-delay", core.DefaultVerifyDelay, "Delay before desktop playback is verified")
	flags.Duration("mobile-grace-delay", core.DefaultMobileGraceDelay, "Extra delay before mobile playback gives up")
	flags.String("quiz-mode", core.DefaultQuizMode, "Default quiz mode (easy, medium, hard)")

	flags.String("songs-path", defaults.Store.SongsPath, "Song database file")
	flags.String("backup-dir", defaults.Store.BackupDir, "Directory for song database backups")
	flags.String("history-path", defaults.Store.HistoryPath, "Quiz history database")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(newServeCmd(), newLookupCmd(), newQuizCmd())
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureSpotify(cfg)
	configureDeezer(cfg)
	configureApp(cfg)
	configureStore(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = core.DefaultServerPort
	}
	cfg.Server.ReadTimeout = positiveDuration("server-read-timeout", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = positiveDuration("server-write-timeout", cfg.Server.WriteTimeout)
	cfg.Server.AdminSecret = viper.GetString("admin-secret")
	if origin := viper.GetString("allowed-origin"); origin != "" {
		cfg.Server.AllowedOrigin = origin
	}
	if path := viper.GetString("debug-log-path"); path != "" {
		cfg.Server.DebugLogPath = path
	}
	cfg.Server.FloodLimit = viper.GetInt("flood-limit-per-minute")
	if cfg.Server.FloodLimit <= 0 {
		cfg.Server.FloodLimit = core.DefaultFloodLimitPerMinute
	}
	cfg.Server.SessionTTL = positiveDuration("session-ttl", cfg.Server.SessionTTL)

	cfg.Log.Level = viper.GetString("log-level")
	if format := viper.GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.RedirectURL = viper.GetString("spotify-redirect-url")
	cfg.Spotify.TokenPath = viper.GetString("spotify-token-path")
	if cfg.Spotify.TokenPath == "" {
		cfg.Spotify.TokenPath = "./spotify_token.json"
	}
	cfg.Spotify.DeviceID = viper.GetString("spotify-device-id")
	cfg.Spotify.BaseURL = viper.GetString("spotify-base-url")

	// The callback is served by this process, so the default follows the server address
	if cfg.Spotify.RedirectURL == "" {
		cfg.Spotify.RedirectURL = defaultRedirectURL(cfg.Server.Host, cfg.Server.Port)
	}
}

func defaultRedirectURL(host string, port int) string {
	if host == defaultServerHost || host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/callback", host, port)
}

func configureDeezer(cfg *core.Config) {
	if baseURL := viper.GetString("deezer-base-url"); baseURL != "" {
		cfg.Deezer.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.Deezer.Timeout = positiveDuration("deezer-timeout", cfg.Deezer.Timeout)
	if rps := viper.GetFloat64("deezer-requests-per-second"); rps > 0 {
		cfg.Deezer.RequestsPerSecond = rps
	}
}

func configureApp(cfg *core.Config) {
	cfg.App.Language = validateLanguage(viper.GetString("language"))

	// Zero pacing is allowed and disables the limiter
	if pacing := viper.GetDuration("search-pacing"); pacing >= 0 {
		cfg.App.SearchPacing = pacing
	}
	cfg.App.MetadataTimeout = positiveDuration("metadata-timeout", cfg.App.MetadataTimeout)
	if delay := viper.GetDuration("verify-delay"); delay >= 0 {
		cfg.App.VerifyDelay = delay
	}
	if delay := viper.GetDuration("mobile-grace-delay"); delay >= 0 {
		cfg.App.MobileGraceDelay = delay
	}

	cfg.App.QuizMode = string(quiz.ParseMode(viper.GetString("quiz-mode")))
}

func configureStore(cfg *core.Config) {
	if path := viper.GetString("songs-path"); path != "" {
		cfg.Store.SongsPath = path
	}
	if dir := viper.GetString("backup-dir"); dir != "" {
		cfg.Store.BackupDir = dir
	}
	if path := viper.GetString("history-path"); path != "" {
		cfg.Store.HistoryPath = path
	}
}

// validateLanguage falls back to the default language with a warning.
func validateLanguage(language string) string {
	if language == "" {
		return i18n.DefaultLanguage
	}
	if !i18n.IsSupported(language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		return i18n.DefaultLanguage
	}
	return language
}

func positiveDuration(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") || strings.EqualFold(format, "text") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func validateConfig(needSpotify bool) error {
	if err := validateServerConfig(); err != nil {
		return err
	}

	if needSpotify {
		if err := validateSpotifyConfig(); err != nil {
			return err
		}
	}

	return validateStoreConfig()
}

func validateServerConfig() error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}
	return nil
}

func validateSpotifyConfig() error {
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}
	if config.Spotify.RedirectURL == "" {
		return fmt.Errorf("spotify redirect URL is required")
	}
	return nil
}

func validateStoreConfig() error {
	if config.Store.SongsPath == "" {
		return fmt.Errorf("songs path is required")
	}
	return nil
}
