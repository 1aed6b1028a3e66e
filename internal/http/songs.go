package http

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/lookup"
)

const (
	scopeSongs  = "songs"
	scopeLookup = "lookup"
	scopeDebug  = "debug"
)

// secretRequest is the envelope of the admin endpoints. Fields are raw so a
// missing member can be told apart from a malformed one.
type secretRequest struct {
	Songs  json.RawMessage `json:"songs"`
	Secret *string         `json:"secret"`
}

type saveResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SongCount int    `json:"songCount"`
	Backup    string `json:"backup"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSongs(w, r)
	case http.MethodPost:
		s.handleSaveSongs(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListSongs(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Songs == nil {
		writeError(w, http.StatusServiceUnavailable, "Song database not configured")
		return
	}

	songs, err := s.deps.Songs.Songs()
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, "Song database not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to load songs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read songs")
		return
	}

	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) handleSaveSongs(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, scopeSongs) {
		return
	}
	if s.deps.Songs == nil {
		writeError(w, http.StatusServiceUnavailable, "Song database not configured")
		return
	}

	songs, ok := s.decodeSecretRequest(w, r)
	if !ok {
		s.metrics.RecordSave("rejected")
		return
	}

	result, err := s.deps.Songs.Save(songs)
	if err != nil {
		s.metrics.RecordSave("failed")
		s.logger.Error("Failed to save songs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to write file")
		return
	}

	s.metrics.RecordSave("saved")
	s.logger.Info("Song database updated",
		zap.Int("songs", result.SongCount),
		zap.String("backup", result.Backup))

	writeJSON(w, http.StatusOK, saveResponse{
		Success:   true,
		Message:   filepath.Base(s.deps.Songs.Path()) + " updated successfully",
		SongCount: result.SongCount,
		Backup:    result.Backup,
		Timestamp: result.Timestamp,
	})
}

// handleLookup runs a whole batch and answers with the report.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !s.allow(w, r, scopeLookup) {
		return
	}

	songs, ok := s.decodeSecretRequest(w, r)
	if !ok {
		return
	}

	if s.deps.Lookup == nil || s.deps.Remote == nil || !s.deps.Remote.Authenticated() {
		writeError(w, http.StatusServiceUnavailable, "Spotify is not connected")
		return
	}

	report, err := s.deps.Lookup.Run(r.Context(), songs, nil)
	if report != nil {
		for _, result := range report.Results {
			s.metrics.RecordLookup(result.Status)
		}
	}
	if err != nil {
		s.logger.Warn("Lookup aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Lookup aborted")
		return
	}

	s.logger.Info("Lookup finished",
		zap.Int("total", report.Stats.Total),
		zap.Int("found", report.Stats.Found),
		zap.Int("average_confidence", report.Stats.AverageConfidence()))

	writeJSON(w, http.StatusOK, lookupResponse{
		Results:           report.Results,
		Stats:             report.Stats,
		AverageConfidence: report.Stats.AverageConfidence(),
		Summary: s.localizer.T("lookup.summary",
			report.Stats.Total, report.Stats.Found, report.Stats.NotFound, report.Stats.AverageConfidence()),
	})
}

type lookupResponse struct {
	Results           []lookup.Result `json:"results"`
	Stats             lookup.Stats    `json:"stats"`
	AverageConfidence int             `json:"averageConfidence"`
	Summary           string          `json:"summary"`
}

// decodeSecretRequest validates the admin envelope in order: well-formed,
// complete, authorized, songs is an array. It writes the error response
// itself and reports whether the caller may continue.
func (s *Server) decodeSecretRequest(w http.ResponseWriter, r *http.Request) ([]core.Song, bool) {
	var req secretRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return nil, false
	}
	if req.Secret == nil || len(req.Songs) == 0 || bytes.Equal(req.Songs, []byte("null")) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return nil, false
	}

	if !s.secretMatches(*req.Secret) {
		s.logger.Warn("Rejected request with wrong secret", zap.String("client", clientIP(r)))
		writeError(w, http.StatusForbidden, "Unauthorized")
		return nil, false
	}

	trimmed := bytes.TrimSpace(req.Songs)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		writeError(w, http.StatusBadRequest, "Songs must be an array")
		return nil, false
	}

	var songs []core.Song
	if err := json.Unmarshal(trimmed, &songs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid song list")
		return nil, false
	}
	return songs, true
}

// secretMatches never accepts anything while no admin secret is configured.
func (s *Server) secretMatches(secret string) bool {
	if s.config.AdminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.config.AdminSecret)) == 1
}
