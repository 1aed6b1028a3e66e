// Package deezer is the secondary track provider, used to find preview assets
// the primary provider does not expose.
package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hitstertrainer/internal/core"
)

const (
	defaultBaseURL = "https://api.deezer.com"
	userAgent      = "Mozilla/5.0 (compatible; Hitster-Trainer/1.0)"
	// maxResponseSize caps how much of an upstream body is read.
	maxResponseSize = 1 * 1024 * 1024
)

// ErrUnavailable reports that Deezer could not answer the request.
type ErrUnavailable struct {
	Status int
	Cause  error
}

func (e *ErrUnavailable) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("deezer unavailable (status %d): %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("deezer unavailable: %v", e.Cause)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Cause
}

// ErrEmptyQuery is returned when a search is attempted without a query.
var ErrEmptyQuery = errors.New("missing query")

// Client queries Deezer's public, unauthenticated search API.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	baseURL string
}

func NewClient(config *core.DeezerConfig, logger *zap.Logger) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Client{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SearchTracks searches tracks by free text and maps them to candidates.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]core.Candidate, error) {
	body, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	if resp.Error != nil {
		return nil, &ErrUnavailable{Cause: fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message)}
	}

	candidates := make([]core.Candidate, 0, len(resp.Data))
	for i := range resp.Data {
		candidates = append(candidates, convertTrack(&resp.Data[i]))
	}

	c.logger.Debug("Track search completed",
		zap.String("query", query),
		zap.Int("results", len(candidates)))

	return candidates, nil
}

// Relay performs the same search but returns the upstream body untouched, for
// clients that cannot call Deezer cross-origin.
func (c *Client) Relay(ctx context.Context, query string) ([]byte, error) {
	return c.search(ctx, query)
}

func (c *Client) search(ctx context.Context, query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ErrUnavailable{Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL := c.baseURL + "/search?" + url.Values{"q": {query}}.Encode()
	return c.doRequest(ctx, reqURL)
}

// doRequest executes a GET request and returns the response body.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ErrUnavailable{Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusTooManyRequests:
		return nil, &ErrUnavailable{Status: resp.StatusCode, Cause: errors.New("rate limited by server")}
	default:
		return nil, &ErrUnavailable{
			Status: resp.StatusCode,
			Cause:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &ErrUnavailable{Cause: fmt.Errorf("reading response: %w", err)}
	}
	if len(body) > maxResponseSize {
		return nil, &ErrUnavailable{Cause: fmt.Errorf("response exceeds %d bytes", maxResponseSize)}
	}
	return body, nil
}

func convertTrack(t *trackResult) core.Candidate {
	return core.Candidate{
		TrackID:    strconv.FormatInt(t.ID, 10),
		Name:       t.Title,
		ArtistName: t.Artist.Name,
		AlbumName:  t.Album.Title,
		ImageURL:   t.Album.CoverMedium,
		PreviewURL: t.Preview,
	}
}
