package playback

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
)

// Request names what to play. Desktop uses TrackID; mobile uses the primary
// preview and falls back to the secondary one.
type Request struct {
	TrackID             string `json:"trackId"`
	PreviewURL          string `json:"previewUrl,omitempty"`
	SecondaryPreviewURL string `json:"secondaryPreviewUrl,omitempty"`
}

// Preview returns the asset the mobile path loads.
func (r Request) Preview() string {
	if r.PreviewURL != "" {
		return r.PreviewURL
	}
	return r.SecondaryPreviewURL
}

// Resolver runs the playback state machine for one device class. The class is
// fixed at construction.
type Resolver struct {
	mode   core.DeviceClass
	remote core.RemotePlayer
	audio  core.AudioElement
	ready  *ReadySignal
	logger *zap.Logger

	metadataTimeout time.Duration
	verifyDelay     time.Duration
	graceDelay      time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewResolver(
	mode core.DeviceClass,
	remote core.RemotePlayer,
	audio core.AudioElement,
	ready *ReadySignal,
	config *core.AppConfig,
	logger *zap.Logger,
) *Resolver {
	metadataTimeout := config.MetadataTimeout
	if metadataTimeout <= 0 {
		metadataTimeout = core.DefaultMetadataTimeout
	}

	return &Resolver{
		mode:            mode,
		remote:          remote,
		audio:           audio,
		ready:           ready,
		logger:          logger,
		metadataTimeout: metadataTimeout,
		verifyDelay:     config.VerifyDelay,
		graceDelay:      config.MobileGraceDelay,
		sleep:           sleepContext,
	}
}

func (r *Resolver) Mode() core.DeviceClass {
	return r.mode
}

// Play runs one attempt to completion. The returned attempt is always in a
// terminal state; failures are reported through its Reason.
func (r *Resolver) Play(ctx context.Context, req Request) core.PlaybackAttempt {
	attempt := &core.PlaybackAttempt{
		Mode:    r.mode,
		Status:  core.StatusIdle,
		TrackID: req.TrackID,
		History: []core.PlaybackStatus{core.StatusIdle},
	}

	if r.mode == core.DeviceMobile {
		r.playMobile(ctx, attempt, req)
	} else {
		r.playDesktop(ctx, attempt, req)
	}

	fields := []zap.Field{
		zap.String("mode", r.mode.String()),
		zap.String("track_id", req.TrackID),
		zap.Stringer("status", attempt.Status),
	}
	if attempt.Succeeded() {
		r.logger.Info("Playback started", fields...)
	} else {
		r.logger.Warn("Playback failed", append(fields, zap.Stringer("reason", attempt.Reason))...)
	}

	return *attempt
}

func (r *Resolver) playMobile(ctx context.Context, attempt *core.PlaybackAttempt, req Request) {
	transition(attempt, core.StatusLoading)

	preview := req.Preview()
	if preview == "" || r.audio == nil {
		fail(attempt, core.ReasonNoPreview)
		return
	}
	attempt.PreviewURL = preview

	loadCtx, cancel := context.WithTimeout(ctx, r.metadataTimeout)
	err := r.audio.Load(loadCtx, preview)
	cancel()
	if err != nil {
		r.logger.Debug("Preview metadata not loaded",
			zap.String("preview", preview),
			zap.Error(err))
		fail(attempt, core.ReasonTimeout)
		return
	}

	if err := r.audio.Play(ctx); err != nil {
		r.logger.Debug("Audio element rejected start", zap.Error(err))
		fail(attempt, core.ReasonAudioPlayFailed)
		return
	}

	transition(attempt, core.StatusVerifying)
	if r.audio.Playing() {
		transition(attempt, core.StatusPlaying)
		return
	}

	if err := r.sleep(ctx, r.graceDelay); err == nil && r.audio.Playing() {
		transition(attempt, core.StatusPlaying)
		return
	}

	r.audio.Pause()
	fail(attempt, core.ReasonMobileNotPlaying)
}

func (r *Resolver) playDesktop(ctx context.Context, attempt *core.PlaybackAttempt, req Request) {
	transition(attempt, core.StatusLoading)

	if r.remote == nil || !r.remote.Authenticated() || r.ready == nil {
		fail(attempt, core.ReasonPlayerNotReady)
		return
	}
	deviceID, ok := r.ready.DeviceID()
	if !ok || deviceID == "" {
		fail(attempt, core.ReasonPlayerNotReady)
		return
	}
	if req.TrackID == "" {
		fail(attempt, core.ReasonTrackNotFound)
		return
	}

	if err := r.remote.Play(ctx, deviceID, req.TrackID); err != nil {
		r.logger.Debug("Remote start rejected",
			zap.String("device_id", deviceID),
			zap.Error(err))
		fail(attempt, reasonForError(err))
		return
	}

	transition(attempt, core.StatusVerifying)

	if err := r.sleep(ctx, r.verifyDelay); err != nil {
		fail(attempt, core.ReasonNetworkError)
		return
	}

	state, err := r.remote.PlaybackState(ctx)
	if err != nil {
		r.logger.Debug("Playback state read failed", zap.Error(err))
		fail(attempt, reasonForError(err))
		return
	}

	if reason := verifyState(state, req.TrackID); reason != core.ReasonNone {
		fail(attempt, reason)
		return
	}

	transition(attempt, core.StatusPlaying)
}

// verifyState applies the desktop checks in order; the first failing one wins.
func verifyState(state core.PlaybackState, trackID string) core.FailureReason {
	switch {
	case !state.HasSession:
		return core.ReasonNoActiveDevice
	case !state.Playing:
		return core.ReasonNotPlaying
	case state.ItemID != trackID:
		return core.ReasonWrongTrack
	case state.IsLocal:
		return core.ReasonLocalFile
	default:
		return core.ReasonNone
	}
}

// reasonForError maps remote command failures to the closed reason set.
func reasonForError(err error) core.FailureReason {
	if errors.Is(err, core.ErrNotAuthenticated) || errors.Is(err, core.ErrPlayerNotReady) {
		return core.ReasonPlayerNotReady
	}

	status, ok := core.RemoteStatus(err)
	if !ok {
		return core.ReasonNetworkError
	}

	switch status {
	case http.StatusNotFound:
		return core.ReasonTrackNotFound
	case http.StatusForbidden:
		return core.ReasonPremiumRequired
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return core.ReasonSpotifyUnavailable
	default:
		return core.ReasonPlaybackFailed
	}
}

func transition(attempt *core.PlaybackAttempt, status core.PlaybackStatus) {
	attempt.Status = status
	attempt.History = append(attempt.History, status)
}

func fail(attempt *core.PlaybackAttempt, reason core.FailureReason) {
	attempt.Reason = reason
	transition(attempt, core.StatusFailed)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
