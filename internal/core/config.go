package core

import (
	"time"

	"hitstertrainer/internal/i18n"
)

const (
	// DefaultServerPort is the default HTTP server port
	DefaultServerPort = 8080
	// DefaultSearchPacing is the fixed delay between primary provider searches in a batch
	DefaultSearchPacing = 500 * time.Millisecond
	// DefaultMetadataTimeout bounds how long the mobile path waits for preview metadata
	DefaultMetadataTimeout = 5 * time.Second
	// DefaultVerifyDelay is the delay before the desktop path reads the playback state
	DefaultVerifyDelay = 1 * time.Second
	// DefaultMobileGraceDelay is the extra delay granted before the mobile path gives up
	DefaultMobileGraceDelay = 1 * time.Second
	// DefaultDeezerRequestsPerSecond limits secondary provider calls
	DefaultDeezerRequestsPerSecond = 5
	// DefaultFloodLimitPerMinute limits secret-gated and debug requests per client
	DefaultFloodLimitPerMinute = 20
	// DefaultSessionTTL is how long an idle playback session is kept
	DefaultSessionTTL = 2 * time.Hour
	// DefaultQuizMode is used when no or an unknown mode is configured
	DefaultQuizMode = "medium"
)

type Config struct {
	Spotify SpotifyConfig
	Deezer  DeezerConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
	Store   StoreConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenPath    string
	// DeviceID pins remote playback to a Spotify Connect device; empty means
	// the first device reported ready wins.
	DeviceID string
	// BaseURL overrides the Web API endpoint (tests and proxies).
	BaseURL string
}

type DeezerConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	AdminSecret   string
	AllowedOrigin string
	DebugLogPath  string
	FloodLimit    int
	SessionTTL    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language         string
	SearchPacing     time.Duration
	MetadataTimeout  time.Duration
	VerifyDelay      time.Duration
	MobileGraceDelay time.Duration
	QuizMode         string
}

type StoreConfig struct {
	SongsPath   string
	BackupDir   string
	HistoryPath string
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL: "http://127.0.0.1:8080/callback",
			TokenPath:   "./spotify_token.json",
		},
		Deezer: DeezerConfig{
			BaseURL:           "https://api.deezer.com",
			Timeout:           10 * time.Second,
			RequestsPerSecond: DefaultDeezerRequestsPerSecond,
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          DefaultServerPort,
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  15 * time.Second,
			AllowedOrigin: "*",
			DebugLogPath:  "./hitster-debug.log",
			FloodLimit:    DefaultFloodLimitPerMinute,
			SessionTTL:    DefaultSessionTTL,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:         i18n.DefaultLanguage,
			SearchPacing:     DefaultSearchPacing,
			MetadataTimeout:  DefaultMetadataTimeout,
			VerifyDelay:      DefaultVerifyDelay,
			MobileGraceDelay: DefaultMobileGraceDelay,
			QuizMode:         DefaultQuizMode,
		},
		Store: StoreConfig{
			SongsPath:   "./hitster-songs.js",
			BackupDir:   "./backups",
			HistoryPath: "./hitster-history.db",
		},
	}
}
