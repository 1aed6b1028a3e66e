// Package spotify provides Spotify Web API integration for track search and remote playback.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"hitstertrainer/internal/core"
)

const (
	// MaxTrackSearchResults limits track search results per song
	MaxTrackSearchResults = 10
	// localURIPrefix marks items that are files on the listener's disk
	localURIPrefix = "spotify:local:"
)

var (
	// ErrNoDevice is returned when the account has no Connect device to play on
	ErrNoDevice = errors.New("no Spotify Connect device available")

	// statusRegex recovers the status of SDK errors raised for empty error bodies.
	statusRegex = regexp.MustCompile(`HTTP (\d{3})`)
)

type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger

	mu     sync.RWMutex
	client *spotify.Client
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// Attach wires an authorized HTTP client. Every API call made before Attach
// fails with core.ErrNotAuthenticated.
func (c *Client) Attach(httpClient *http.Client) {
	var opts []spotify.ClientOption
	if c.config.BaseURL != "" {
		baseURL := c.config.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, spotify.WithBaseURL(baseURL))
	}

	c.mu.Lock()
	c.client = spotify.New(httpClient, opts...)
	c.mu.Unlock()
}

func (c *Client) Authenticated() bool {
	return c.api() != nil
}

// Authenticate restores the saved token when it is still accepted and runs the
// authorization flow otherwise. The flow completes when the callback served by
// authorizer is hit.
func (c *Client) Authenticate(ctx context.Context, authorizer *Authorizer) error {
	token, err := loadToken(c.config.TokenPath)
	if err == nil {
		c.Attach(authorizer.Client(ctx, token))
		user, userErr := c.api().CurrentUser(ctx)
		if userErr == nil {
			c.logger.Info("Authenticated successfully", zap.String("user", user.DisplayName))
			return nil
		}
		c.logger.Warn("Saved token invalid, starting OAuth flow", zap.Error(userErr))
	} else {
		c.logger.Info("No saved token found, starting OAuth flow")
	}

	fmt.Printf("Please visit the following URL to authorize the application:\n%s\n", authorizer.AuthURL())

	token, err = authorizer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	if saveErr := saveToken(c.config.TokenPath, token); saveErr != nil {
		c.logger.Warn("Failed to save token", zap.Error(saveErr))
	}

	c.Attach(authorizer.Client(ctx, token))

	user, err := c.api().CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	c.logger.Info("OAuth flow completed successfully", zap.String("user", user.DisplayName))
	return nil
}

// SearchCandidates runs a field-qualified track search and returns at most
// MaxTrackSearchResults candidates in provider order.
func (c *Client) SearchCandidates(ctx context.Context, artist, title string) ([]core.Candidate, error) {
	api := c.api()
	if api == nil {
		return nil, core.ErrNotAuthenticated
	}

	query := fmt.Sprintf("artist:%s track:%s", artist, title)
	results, err := api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(MaxTrackSearchResults))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", convertError(err))
	}

	if results.Tracks == nil {
		return nil, nil
	}

	candidates := make([]core.Candidate, 0, min(len(results.Tracks.Tracks), MaxTrackSearchResults))
	for i := range results.Tracks.Tracks {
		if len(candidates) >= MaxTrackSearchResults {
			break
		}
		candidates = append(candidates, convertTrack(&results.Tracks.Tracks[i]))
	}

	c.logger.Debug("Track search completed",
		zap.String("query", query),
		zap.Int("results", len(candidates)))

	return candidates, nil
}

func (c *Client) Candidate(ctx context.Context, trackID string) (*core.Candidate, error) {
	api := c.api()
	if api == nil {
		return nil, core.ErrNotAuthenticated
	}

	track, err := api.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, convertError(err))
	}

	candidate := convertTrack(track)
	return &candidate, nil
}

// Play starts trackID on the given Connect device. Rejections are returned as
// *core.RemoteError carrying the HTTP status.
func (c *Client) Play(ctx context.Context, deviceID, trackID string) error {
	api := c.api()
	if api == nil {
		return core.ErrNotAuthenticated
	}

	opts := &spotify.PlayOptions{
		URIs: []spotify.URI{spotify.URI("spotify:track:" + trackID)},
	}
	if deviceID != "" {
		id := spotify.ID(deviceID)
		opts.DeviceID = &id
	}

	if err := api.PlayOpt(ctx, opts); err != nil {
		return convertError(err)
	}

	c.logger.Debug("Started remote playback",
		zap.String("device_id", deviceID),
		zap.String("track_id", trackID))
	return nil
}

func (c *Client) Pause(ctx context.Context, deviceID string) error {
	api := c.api()
	if api == nil {
		return core.ErrNotAuthenticated
	}

	var opts *spotify.PlayOptions
	if deviceID != "" {
		id := spotify.ID(deviceID)
		opts = &spotify.PlayOptions{DeviceID: &id}
	}

	if err := api.PauseOpt(ctx, opts); err != nil {
		return convertError(err)
	}
	return nil
}

// Resume continues whatever was playing on the device.
func (c *Client) Resume(ctx context.Context, deviceID string) error {
	api := c.api()
	if api == nil {
		return core.ErrNotAuthenticated
	}

	var opts *spotify.PlayOptions
	if deviceID != "" {
		id := spotify.ID(deviceID)
		opts = &spotify.PlayOptions{DeviceID: &id}
	}

	if err := api.PlayOpt(ctx, opts); err != nil {
		return convertError(err)
	}
	return nil
}

// PlaybackState reads the current player. An empty answer (no content) means
// there is no playback session.
func (c *Client) PlaybackState(ctx context.Context) (core.PlaybackState, error) {
	api := c.api()
	if api == nil {
		return core.PlaybackState{}, core.ErrNotAuthenticated
	}

	state, err := api.PlayerState(ctx)
	if err != nil {
		return core.PlaybackState{}, convertError(err)
	}
	if state == nil {
		return core.PlaybackState{}, nil
	}

	result := core.PlaybackState{
		HasSession: state.Device.ID != "" || state.Item != nil,
		Playing:    state.Playing,
	}
	if state.Item != nil {
		result.ItemID = state.Item.ID.String()
		result.IsLocal = state.Item.ID == "" || strings.HasPrefix(string(state.Item.URI), localURIPrefix)
	}

	return result, nil
}

func (c *Client) Devices(ctx context.Context) ([]core.Device, error) {
	api := c.api()
	if api == nil {
		return nil, core.ErrNotAuthenticated
	}

	devices, err := api.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player devices: %w", convertError(err))
	}

	result := make([]core.Device, 0, len(devices))
	for _, device := range devices {
		result = append(result, core.Device{
			ID:     device.ID.String(),
			Name:   device.Name,
			Type:   device.Type,
			Active: device.Active,
		})
	}
	return result, nil
}

// PickDevice chooses where a terminal session plays: the pinned device when
// one is configured, otherwise the active device, otherwise the first listed.
func (c *Client) PickDevice(ctx context.Context, pinned string) (string, error) {
	if pinned != "" {
		return pinned, nil
	}

	devices, err := c.Devices(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", ErrNoDevice
	}

	for _, device := range devices {
		if device.Active {
			c.logger.Debug("Using active device",
				zap.String("deviceName", device.Name),
				zap.String("deviceType", device.Type),
				zap.String("deviceID", device.ID))
			return device.ID, nil
		}
	}

	c.logger.Debug("No active device, using the first one",
		zap.String("deviceName", devices[0].Name),
		zap.Int("totalDevices", len(devices)))
	return devices[0].ID, nil
}

func (c *Client) api() *spotify.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func convertTrack(track *spotify.FullTrack) core.Candidate {
	candidate := core.Candidate{
		TrackID:     track.ID.String(),
		Name:        track.Name,
		AlbumName:   track.Album.Name,
		ReleaseDate: track.Album.ReleaseDate,
		PreviewURL:  track.PreviewURL,
	}
	if len(track.Artists) > 0 {
		candidate.ArtistName = track.Artists[0].Name
	}
	if len(track.Album.Images) > 0 {
		candidate.ImageURL = track.Album.Images[0].URL
	}
	return candidate
}

// convertError maps SDK API errors to *core.RemoteError. Transport faults are
// returned unchanged.
func convertError(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return &core.RemoteError{Status: apiErr.Status, Message: apiErr.Message}
	}

	if m := statusRegex.FindStringSubmatch(err.Error()); m != nil && strings.HasPrefix(err.Error(), "spotify:") {
		status, _ := strconv.Atoi(m[1])
		return &core.RemoteError{Status: status, Message: err.Error()}
	}

	return err
}
