package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/playback"
	"hitstertrainer/internal/quiz"
)

const maxSessions = 1024

// sessionRegistry keeps playback sessions until they sit idle for the TTL.
type sessionRegistry struct {
	cache  *expirable.LRU[string, *playback.Session]
	active prometheus.Gauge
}

func newSessionRegistry(ttl time.Duration, active prometheus.Gauge) *sessionRegistry {
	if ttl <= 0 {
		ttl = core.DefaultSessionTTL
	}

	registry := &sessionRegistry{active: active}
	registry.cache = expirable.NewLRU[string, *playback.Session](maxSessions, func(string, *playback.Session) {
		active.Dec()
	}, ttl)

	return registry
}

func (r *sessionRegistry) add(session *playback.Session) {
	r.cache.Add(session.ID, session)
	r.active.Inc()
}

func (r *sessionRegistry) count() int {
	return r.cache.Len()
}

// get returns the session and restarts its idle timer.
func (r *sessionRegistry) get(id string) (*playback.Session, bool) {
	session, ok := r.cache.Get(id)
	if ok {
		r.cache.Add(id, session)
	}
	return session, ok
}

type createSessionResponse struct {
	ID          string           `json:"id"`
	DeviceClass core.DeviceClass `json:"deviceClass"`
}

type readyRequest struct {
	DeviceID string `json:"deviceId"`
}

type sessionResponse struct {
	ID          string               `json:"id"`
	DeviceClass core.DeviceClass     `json:"deviceClass"`
	Ready       bool                 `json:"ready"`
	Playing     bool                 `json:"playing"`
	Last        core.PlaybackAttempt `json:"last"`
}

type playResponse struct {
	core.PlaybackAttempt
	Message string `json:"message,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var signals playback.DeviceSignals
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&signals)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if signals.UserAgent == "" {
		signals.UserAgent = r.UserAgent()
	}

	class := playback.Classify(signals)

	var audio core.AudioElement
	if class == core.DeviceMobile && s.deps.NewAudio != nil {
		audio = s.deps.NewAudio()
	}

	id := uuid.NewString()
	session := playback.NewSession(id, class, s.deps.Remote, audio, s.app, s.logger.With(zap.String("session", id)))
	if class == core.DeviceDesktop && s.deps.DeviceID != "" {
		session.Ready.Resolve(s.deps.DeviceID)
	}
	s.sessions.add(session)

	s.logger.Info("Playback session created",
		zap.String("session", id),
		zap.Stringer("device_class", class))

	writeJSON(w, http.StatusCreated, createSessionResponse{ID: id, DeviceClass: class})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	_, ready := session.Ready.DeviceID()
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:          session.ID,
		DeviceClass: session.Class,
		Ready:       ready,
		Playing:     session.Playing(),
		Last:        session.Last(),
	})
}

// handleSessionReady resolves the one-shot ready signal. Later calls are
// accepted but change nothing.
func (s *Server) handleSessionReady(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req readyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "Missing deviceId")
		return
	}

	resolved := session.Ready.Resolve(req.DeviceID)
	deviceID, _ := session.Ready.DeviceID()

	s.logger.Debug("Device ready",
		zap.String("session", session.ID),
		zap.String("device_id", deviceID),
		zap.Bool("resolved", resolved))

	writeJSON(w, http.StatusOK, map[string]any{"resolved": resolved, "deviceId": deviceID})
}

func (s *Server) handleSessionPlay(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req playback.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	start := time.Now()
	attempt := session.Play(r.Context(), req)
	s.metrics.RecordPlayback(attempt, time.Since(start))

	resp := playResponse{PlaybackAttempt: attempt}
	if !attempt.Succeeded() {
		resp.Message = s.localizer.T(quiz.ReasonKey(attempt.Reason))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionPause(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	err := session.Pause(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, core.ErrNotAuthenticated):
		writeError(w, http.StatusServiceUnavailable, "Spotify is not connected")
	case errors.Is(err, core.ErrPlayerNotReady):
		writeError(w, http.StatusConflict, "Player not ready")
	default:
		s.logger.Warn("Pause failed", zap.String("session", session.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Pause failed")
	}
}

func (s *Server) handleSessionResume(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	err := session.Resume(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, core.ErrNotAuthenticated):
		writeError(w, http.StatusServiceUnavailable, "Spotify is not connected")
	case errors.Is(err, core.ErrPlayerNotReady):
		writeError(w, http.StatusConflict, "Player not ready")
	case errors.Is(err, core.ErrNothingToResume):
		writeError(w, http.StatusConflict, "Nothing to resume")
	default:
		s.logger.Warn("Resume failed", zap.String("session", session.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Resume failed")
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*playback.Session, bool) {
	session, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
	}
	return session, ok
}
