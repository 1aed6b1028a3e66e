package http

import (
	"net/http"
	"strings"
	"testing"

	"hitstertrainer/internal/core"
)

const desktopUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/124.0 Safari/537.36"

func createSession(t *testing.T, s *Server, body string, headers ...string) createSessionResponse {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/session", body, headers...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp createSessionResponse
	decode(t, rec, &resp)
	return resp
}

func TestCreateSession_DeviceClass(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		headers  []string
		expected string
	}{
		{"desktop header", "", []string{"User-Agent", desktopUA}, "desktop"},
		{"mobile header", "", []string{"User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"}, "mobile"},
		{"small touch screen", `{"touch":true,"viewportWidth":600}`, []string{"User-Agent", desktopUA}, "mobile"},
		{"large touch screen", `{"touch":true,"viewportWidth":1280}`, []string{"User-Agent", desktopUA}, "desktop"},
		{"body user agent wins", `{"userAgent":"Android 14"}`, []string{"User-Agent", desktopUA}, "mobile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, testDeps(t))
			rec := do(t, server, http.MethodPost, "/api/session", tt.body, tt.headers...)
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"deviceClass":"`+tt.expected+`"`) {
				t.Errorf("body = %s, want deviceClass %s", rec.Body.String(), tt.expected)
			}
			if server.sessions.count() != 1 {
				t.Errorf("sessions = %d, want 1", server.sessions.count())
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		if rec := do(t, newTestServer(t, testDeps(t)), http.MethodPost, "/api/session", "{"); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSession_NotFound(t *testing.T) {
	server := newTestServer(t, testDeps(t))

	for _, target := range []string{"/api/session/missing/ready", "/api/session/missing/play", "/api/session/missing/pause", "/api/session/missing/resume"} {
		if rec := do(t, server, http.MethodPost, target, `{}`); rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, rec.Code)
		}
	}
	if rec := do(t, server, http.MethodGet, "/api/session/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404", rec.Code)
	}
}

func TestSession_DesktopPlayback(t *testing.T) {
	deps := testDeps(t)
	remote := &fakeRemote{authenticated: true}
	deps.Remote = remote
	server := newTestServer(t, deps)

	session := createSession(t, server, "", "User-Agent", desktopUA)
	base := "/api/session/" + session.ID

	// before the player reported ready
	rec := do(t, server, http.MethodPost, base+"/play", `{"trackId":"abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("play status = %d", rec.Code)
	}
	var attempt playResponse
	decode(t, rec, &attempt)
	if attempt.Reason != core.ReasonPlayerNotReady {
		t.Errorf("Reason = %v, want PLAYER_NOT_READY", attempt.Reason)
	}
	if attempt.Message != "The Spotify player is not ready" {
		t.Errorf("Message = %q", attempt.Message)
	}

	if rec := do(t, server, http.MethodPost, base+"/pause", ""); rec.Code != http.StatusConflict {
		t.Errorf("pause before ready status = %d, want 409", rec.Code)
	}

	if rec := do(t, server, http.MethodPost, base+"/ready", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("ready without device status = %d, want 400", rec.Code)
	}

	rec = do(t, server, http.MethodPost, base+"/ready", `{"deviceId":"device-1"}`)
	if !strings.Contains(rec.Body.String(), `"resolved":true`) {
		t.Errorf("first ready = %s", rec.Body.String())
	}
	rec = do(t, server, http.MethodPost, base+"/ready", `{"deviceId":"device-2"}`)
	if !strings.Contains(rec.Body.String(), `"resolved":false`) || !strings.Contains(rec.Body.String(), `"deviceId":"device-1"`) {
		t.Errorf("second ready = %s", rec.Body.String())
	}

	rec = do(t, server, http.MethodPost, base+"/play", `{"trackId":"abc"}`)
	attempt = playResponse{}
	decode(t, rec, &attempt)
	if attempt.Status != core.StatusPlaying || attempt.Message != "" {
		t.Errorf("attempt = %+v, want playing", attempt)
	}

	rec = do(t, server, http.MethodGet, base, "")
	var state sessionResponse
	decode(t, rec, &state)
	if !state.Ready || !state.Playing || state.Last.TrackID != "abc" {
		t.Errorf("session = %+v", state)
	}

	if rec := do(t, server, http.MethodPost, base+"/pause", ""); rec.Code != http.StatusOK {
		t.Errorf("pause status = %d, want 200", rec.Code)
	}
	if len(remote.paused) != 1 || remote.paused[0] != "device-1" {
		t.Errorf("paused = %v, want [device-1]", remote.paused)
	}

	if rec := do(t, server, http.MethodPost, base+"/resume", ""); rec.Code != http.StatusOK {
		t.Errorf("resume status = %d, want 200", rec.Code)
	}
	if len(remote.resumed) != 1 || remote.resumed[0] != "device-1" {
		t.Errorf("resumed = %v, want [device-1]", remote.resumed)
	}
	rec = do(t, server, http.MethodGet, base, "")
	state = sessionResponse{}
	decode(t, rec, &state)
	if !state.Playing {
		t.Errorf("session = %+v, want playing after resume", state)
	}

	metrics := do(t, server, http.MethodGet, "/metrics", "").Body.String()
	for _, want := range []string{
		`hitster_playback_attempts_total{mode="desktop",reason="",status="playing"} 1`,
		`hitster_playback_attempts_total{mode="desktop",reason="PLAYER_NOT_READY",status="failed"} 1`,
		"hitster_active_sessions 1",
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestSession_PinnedDevice(t *testing.T) {
	deps := testDeps(t)
	deps.DeviceID = "pinned"
	server := newTestServer(t, deps)

	session := createSession(t, server, "", "User-Agent", desktopUA)

	rec := do(t, server, http.MethodPost, "/api/session/"+session.ID+"/play", `{"trackId":"abc"}`)
	var attempt playResponse
	decode(t, rec, &attempt)
	if attempt.Status != core.StatusPlaying {
		t.Errorf("attempt = %+v, want playing on the pinned device", attempt)
	}
}

func TestSession_MobilePlayback(t *testing.T) {
	deps := testDeps(t)
	var audio *fakeAudio
	deps.NewAudio = func() core.AudioElement {
		audio = &fakeAudio{}
		return audio
	}
	server := newTestServer(t, deps)

	session := createSession(t, server, `{"userAgent":"Android 14"}`)

	rec := do(t, server, http.MethodPost, "/api/session/"+session.ID+"/play",
		`{"trackId":"abc","secondaryPreviewUrl":"https://cdn.example/preview.mp3"}`)
	var attempt playResponse
	decode(t, rec, &attempt)
	if attempt.Status != core.StatusPlaying || attempt.Mode != core.DeviceMobile {
		t.Errorf("attempt = %+v, want mobile playing", attempt)
	}
	if audio == nil || audio.loaded != "https://cdn.example/preview.mp3" {
		t.Errorf("audio element loaded %+v", audio)
	}

	if rec := do(t, server, http.MethodPost, "/api/session/"+session.ID+"/pause", ""); rec.Code != http.StatusOK {
		t.Errorf("pause status = %d, want 200", rec.Code)
	}
	if rec := do(t, server, http.MethodPost, "/api/session/"+session.ID+"/resume", ""); rec.Code != http.StatusOK {
		t.Errorf("resume status = %d, want 200", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/api/session/"+session.ID+"/play", `{"trackId":"abc"}`)
	attempt = playResponse{}
	decode(t, rec, &attempt)
	if attempt.Reason != core.ReasonNoPreview {
		t.Errorf("Reason = %v, want NO_PREVIEW", attempt.Reason)
	}
}

func TestSession_ResumeWithoutSong(t *testing.T) {
	deps := testDeps(t)
	deps.NewAudio = func() core.AudioElement { return &fakeAudio{} }
	server := newTestServer(t, deps)

	session := createSession(t, server, `{"userAgent":"Android 14"}`)

	rec := do(t, server, http.MethodPost, "/api/session/"+session.ID+"/resume", "")
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "Nothing to resume") {
		t.Errorf("resume status = %d: %s, want 409", rec.Code, rec.Body.String())
	}
}
