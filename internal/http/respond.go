package http

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// setCORS allows any origin to call the relay endpoints with JSON bodies.
func setCORS(w http.ResponseWriter, origin, methods string) {
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// clientIP prefers proxy headers so the flood guard sees the real client.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// allow runs the flood guard for scope and answers 429 when it trips.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, scope string) bool {
	if s.deps.Floodgate == nil {
		return true
	}

	client := clientIP(r)
	if s.deps.Floodgate.Allow(scope, client) {
		return true
	}

	s.metrics.RecordFloodRejection(scope)
	s.logger.Warn("Request rejected by flood guard",
		zap.String("scope", scope),
		zap.String("client", client))

	if wait := s.deps.Floodgate.RetryAfter(scope, client); wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
	}
	writeError(w, http.StatusTooManyRequests, "Too many requests")
	return false
}
