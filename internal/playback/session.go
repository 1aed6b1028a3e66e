package playback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
)

// Session is one client's playback context. Its device class and ready
// signal live as long as the session; attempts run one at a time.
type Session struct {
	ID       string
	Class    core.DeviceClass
	Ready    *ReadySignal
	Created  time.Time
	resolver *Resolver
	remote   core.RemotePlayer
	audio    core.AudioElement
	logger   *zap.Logger

	mu      sync.Mutex
	last    core.PlaybackAttempt
	playing bool
}

func NewSession(
	id string,
	class core.DeviceClass,
	remote core.RemotePlayer,
	audio core.AudioElement,
	config *core.AppConfig,
	logger *zap.Logger,
) *Session {
	ready := NewReadySignal()
	return &Session{
		ID:       id,
		Class:    class,
		Ready:    ready,
		Created:  time.Now(),
		resolver: NewResolver(class, remote, audio, ready, config, logger),
		remote:   remote,
		audio:    audio,
		logger:   logger,
	}
}

// Play replaces the previous attempt with a new one for req.
func (s *Session) Play(ctx context.Context, req Request) core.PlaybackAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt := s.resolver.Play(ctx, req)
	s.last = attempt
	s.playing = attempt.Succeeded()
	return attempt
}

// Pause stops whatever the session is playing.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pauseLocked(ctx)
}

// Resume continues the last song that started playing. Desktop sessions pick
// up where the remote device paused; mobile sessions restart the loaded clip.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.last.Succeeded() {
		return core.ErrNothingToResume
	}
	if s.playing {
		return nil
	}

	if s.Class == core.DeviceMobile {
		if s.audio == nil {
			return core.ErrNothingToResume
		}
		if err := s.audio.Play(ctx); err != nil {
			return err
		}
		s.playing = true
		return nil
	}

	if s.remote == nil || !s.remote.Authenticated() {
		return core.ErrNotAuthenticated
	}
	deviceID, ok := s.Ready.DeviceID()
	if !ok {
		return core.ErrPlayerNotReady
	}
	if err := s.remote.Resume(ctx, deviceID); err != nil {
		return err
	}
	s.playing = true
	return nil
}

// Skip abandons the current song. On desktop the remote device is paused
// first so the next song does not start over a running one.
func (s *Session) Skip(ctx context.Context, reason core.FailureReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Skipping song",
		zap.String("session", s.ID),
		zap.String("track_id", s.last.TrackID),
		zap.Stringer("reason", reason))

	if s.Class == core.DeviceDesktop && s.remote != nil && s.remote.Authenticated() {
		if deviceID, ok := s.Ready.DeviceID(); ok {
			if err := s.remote.Pause(ctx, deviceID); err != nil {
				s.logger.Debug("Pause before skip failed", zap.Error(err))
			}
		}
	} else if s.audio != nil {
		s.audio.Pause()
	}
	s.playing = false
}

func (s *Session) Last() core.PlaybackAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Session) pauseLocked(ctx context.Context) error {
	defer func() { s.playing = false }()

	if s.Class == core.DeviceMobile {
		if s.audio != nil {
			s.audio.Pause()
		}
		return nil
	}

	if s.remote == nil || !s.remote.Authenticated() {
		return core.ErrNotAuthenticated
	}
	deviceID, ok := s.Ready.DeviceID()
	if !ok {
		return core.ErrPlayerNotReady
	}
	return s.remote.Pause(ctx, deviceID)
}
