package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hitstertrainer/internal/debuglog"
)

type debugResponse struct {
	Success      bool   `json:"success"`
	LogFile      string `json:"logFile"`
	BytesWritten int    `json:"bytesWritten"`
	Timestamp    string `json:"timestamp"`
}

// handleRelay passes a Deezer search through for browsers that cannot call
// Deezer cross-origin. Bodies are returned verbatim and cached briefly.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	setCORS(w, s.config.AllowedOrigin, "GET, POST, OPTIONS")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter")
		return
	}

	if body, ok := s.relay.Get(query); ok {
		s.metrics.RecordRelay("cached")
		writeRaw(w, body)
		return
	}

	if s.deps.Relay == nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch from Deezer API")
		return
	}

	body, err := s.deps.Relay.Relay(r.Context(), query)
	if err != nil {
		s.metrics.RecordRelay("failed")
		s.logger.Warn("Deezer relay failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to fetch from Deezer API")
		return
	}

	s.relay.Add(query, body)
	s.metrics.RecordRelay("ok")
	writeRaw(w, body)
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleDebug appends a client diagnostic to the debug log.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	setCORS(w, s.config.AllowedOrigin, "POST, OPTIONS")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if !s.allow(w, r, scopeDebug) {
		return
	}

	var entry debuglog.Entry
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&entry); err != nil {
		s.metrics.RecordDebugEntry("invalid")
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if s.deps.Debug == nil {
		s.metrics.RecordDebugEntry("failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to write to log file",
		})
		return
	}

	result, err := s.deps.Debug.Write(entry)
	if err != nil {
		s.metrics.RecordDebugEntry("failed")
		s.logger.Error("Failed to write debug entry", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to write to log file",
		})
		return
	}

	s.metrics.RecordDebugEntry("written")
	writeJSON(w, http.StatusOK, debugResponse{
		Success:      true,
		LogFile:      s.deps.Debug.Path(),
		BytesWritten: result.BytesWritten,
		Timestamp:    result.Timestamp,
	})
}
