package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newPreviewServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/preview.mp3", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "bytes=0-1023" {
			t.Errorf("Range = %q", r.Header.Get("Range"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(append([]byte("ID3"), make([]byte, 2048)...))
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/preview.mp3", http.StatusFound)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestElement_LoadAndPlay(t *testing.T) {
	server := newPreviewServer(t)
	element := NewElement()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	element.now = func() time.Time { return now }

	if err := element.Play(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Play() before Load error = %v, want ErrNotLoaded", err)
	}

	if err := element.Load(context.Background(), server.URL+"/redirect"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := element.Play(context.Background()); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if !element.Playing() {
		t.Error("element should be playing right after start")
	}

	now = now.Add(PreviewLength)
	if element.Playing() {
		t.Error("element should stop at the end of the preview window")
	}
}

func TestElement_Pause(t *testing.T) {
	server := newPreviewServer(t)
	element := NewElement()

	if err := element.Load(context.Background(), server.URL+"/preview.mp3"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	_ = element.Play(context.Background())
	element.Pause()

	if element.Playing() {
		t.Error("paused element reports playing")
	}
}

func TestElement_LoadFailures(t *testing.T) {
	server := newPreviewServer(t)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"not audio", "/page", "not audio"},
		{"empty body", "/empty", "empty body"},
		{"missing", "/missing.mp3", "status 404"},
		{"redirect loop", "/loop", "too many redirects"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			element := NewElement()
			err := element.Load(context.Background(), server.URL+tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
			if err := element.Play(context.Background()); !errors.Is(err, ErrNotLoaded) {
				t.Errorf("Play() after failed Load error = %v, want ErrNotLoaded", err)
			}
		})
	}
}

func TestElement_LoadHonorsDeadline(t *testing.T) {
	server := newPreviewServer(t)
	element := NewElement()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := element.Load(ctx, server.URL+"/slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Load() error = %v, want deadline exceeded", err)
	}
}
