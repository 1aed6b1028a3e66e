// Package audio provides a server-side stand-in for a client audio element.
// It checks that a preview asset is reachable and really is audio, then tracks
// the nominal playback window of the clip.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// PreviewLength is the nominal duration of a provider preview clip
	PreviewLength = 30 * time.Second
	// probeBytes is how much of the asset is requested to read its header
	probeBytes = 1024

	defaultHTTPTimeout = 10 * time.Second
	maxHTTPRedirects   = 5
)

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrNotLoaded        = errors.New("no asset loaded")
	ErrNotAudio         = errors.New("asset is not audio")
)

type Element struct {
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	asset   string
	loaded  bool
	started time.Time
	playing bool
}

func NewElement() *Element {
	return &Element{
		client: newHTTPClient(),
		now:    time.Now,
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultHTTPTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// Load requests the head of the asset and succeeds once the response shows an
// audio payload. Any previous asset is stopped.
func (e *Element) Load(ctx context.Context, assetURL string) error {
	e.mu.Lock()
	e.asset = assetURL
	e.loaded = false
	e.playing = false
	e.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeBytes-1))
	req.Header.Set("Accept", "audio/*")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("preview request failed with status %d", resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "audio/") {
		return fmt.Errorf("%w: %q", ErrNotAudio, resp.Header.Get("Content-Type"))
	}

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, probeBytes))
	if err != nil {
		return fmt.Errorf("failed to read preview: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: empty body", ErrNotAudio)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.asset == assetURL {
		e.loaded = true
	}
	return nil
}

func (e *Element) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return ErrNotLoaded
	}
	e.started = e.now()
	e.playing = true
	return nil
}

// Playing reports whether a started clip is still inside its preview window.
func (e *Element) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.playing && e.now().Sub(e.started) < PreviewLength
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

// Asset returns the URL of the last loaded asset.
func (e *Element) Asset() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.asset
}
