// Package http serves the trainer's web API: song database updates, batch
// lookups, the Deezer relay, client debug logs and playback sessions.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/debuglog"
	"hitstertrainer/internal/flood"
	"hitstertrainer/internal/i18n"
	"hitstertrainer/internal/lookup"
	"hitstertrainer/internal/store"
)

const (
	serviceName     = "hitstertrainer"
	shutdownTimeout = 10 * time.Second
	// maxBodySize caps request bodies; a full song database fits comfortably
	maxBodySize = 10 << 20

	relayCacheSize = 256
	relayCacheTTL  = 10 * time.Minute
)

// SongRepository is the song database behind /api/songs.
type SongRepository interface {
	Songs() ([]core.Song, error)
	Save(songs []core.Song) (*store.SaveResult, error)
	Path() string
}

// PreviewRelay forwards searches to the secondary provider.
type PreviewRelay interface {
	Relay(ctx context.Context, query string) ([]byte, error)
}

type DebugSink interface {
	Write(entry debuglog.Entry) (*debuglog.WriteResult, error)
	Path() string
}

type BatchLookup interface {
	Run(ctx context.Context, songs []core.Song, progress lookup.ProgressFunc) (*lookup.Report, error)
}

// Deps are the collaborators the handlers use. Nil members disable the
// endpoints that need them.
type Deps struct {
	Songs     SongRepository
	Relay     PreviewRelay
	Debug     DebugSink
	Lookup    BatchLookup
	Remote    core.RemotePlayer
	Callback  http.Handler
	NewAudio  func() core.AudioElement
	Floodgate *flood.Floodgate
	// DeviceID, when set, resolves every desktop session's ready signal at creation.
	DeviceID string
}

type Server struct {
	config    *core.ServerConfig
	app       *core.AppConfig
	deps      Deps
	logger    *zap.Logger
	localizer *i18n.Localizer
	server    *http.Server
	metrics   *Metrics
	sessions  *sessionRegistry
	relay     *expirable.LRU[string, []byte]
}

func NewServer(config *core.ServerConfig, app *core.AppConfig, deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		config:    config,
		app:       app,
		deps:      deps,
		logger:    logger,
		localizer: i18n.NewLocalizer(app.Language),
		metrics:   NewMetrics(),
		relay:     expirable.NewLRU[string, []byte](relayCacheSize, nil, relayCacheTTL),
	}
	s.sessions = newSessionRegistry(config.SessionTTL, s.metrics.ActiveSessions)
	s.server = createHTTPServer(config, s.setupRoutes())
	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
	})
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/{$}", homeHandler)

	if s.deps.Callback != nil {
		mux.Handle("/callback", s.deps.Callback)
	}

	mux.HandleFunc("/api/songs", s.handleSongs)
	mux.HandleFunc("/api/lookup", s.handleLookup)
	mux.HandleFunc("/api/deezer", s.handleRelay)
	mux.HandleFunc("/api/debug", s.handleDebug)

	mux.HandleFunc("POST /api/session", s.handleCreateSession)
	mux.HandleFunc("GET /api/session/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/session/{id}/ready", s.handleSessionReady)
	mux.HandleFunc("POST /api/session/{id}/play", s.handleSessionPlay)
	mux.HandleFunc("POST /api/session/{id}/pause", s.handleSessionPause)
	mux.HandleFunc("POST /api/session/{id}/resume", s.handleSessionResume)

	return mux
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// handleReady reports ready once the primary provider is authenticated.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Remote == nil || !s.deps.Remote.Authenticated() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "service": serviceName})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "service": serviceName})
}

func homeHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Hitster Trainer</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 Hitster Trainer</h1>
    <p>Practice Hitster with songs from your Spotify-backed database</p>

    <h2>Endpoints</h2>
    <div class="endpoint">🎶 <a href="/api/songs">Songs</a> - Current song database</div>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Spotify connection</div>
</body>
</html>`))
}
