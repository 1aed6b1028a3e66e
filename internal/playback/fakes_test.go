package playback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
)

type fakeRemote struct {
	mu            sync.Mutex
	authenticated bool
	playErr       error
	state         core.PlaybackState
	stateErr      error
	played        []string
	paused        []string
	resumed       []string
}

func (f *fakeRemote) Authenticated() bool { return f.authenticated }

func (f *fakeRemote) Play(_ context.Context, deviceID, trackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, deviceID+"/"+trackID)
	return f.playErr
}

func (f *fakeRemote) Pause(_ context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, deviceID)
	return nil
}

func (f *fakeRemote) Resume(_ context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumed = append(f.resumed, deviceID)
	return nil
}

func (f *fakeRemote) PlaybackState(context.Context) (core.PlaybackState, error) {
	return f.state, f.stateErr
}

type fakeAudio struct {
	loadErr   error
	loadDelay time.Duration
	playErr   error
	// playing answers successive Playing calls; the last value repeats.
	playing []bool
	loaded  string
	checks  int
	paused  int
}

func (f *fakeAudio) Load(ctx context.Context, assetURL string) error {
	if f.loadDelay > 0 {
		select {
		case <-time.After(f.loadDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.loaded = assetURL
	return f.loadErr
}

func (f *fakeAudio) Play(context.Context) error { return f.playErr }

func (f *fakeAudio) Playing() bool {
	if len(f.playing) == 0 {
		return true
	}
	i := min(f.checks, len(f.playing)-1)
	f.checks++
	return f.playing[i]
}

func (f *fakeAudio) Pause() { f.paused++ }

func testConfig() *core.AppConfig {
	return &core.AppConfig{
		MetadataTimeout:  50 * time.Millisecond,
		VerifyDelay:      time.Second,
		MobileGraceDelay: time.Second,
	}
}

// recordedSleep replaces real waiting and remembers the requested delays.
type recordedSleep struct {
	delays []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newDesktopResolver(remote *fakeRemote, deviceID string) (*Resolver, *recordedSleep) {
	ready := NewReadySignal()
	if deviceID != "" {
		ready.Resolve(deviceID)
	}
	resolver := NewResolver(core.DeviceDesktop, remote, nil, ready, testConfig(), zap.NewNop())
	sleeper := &recordedSleep{}
	resolver.sleep = sleeper.sleep
	return resolver, sleeper
}

func newMobileResolver(audio *fakeAudio) (*Resolver, *recordedSleep) {
	resolver := NewResolver(core.DeviceMobile, nil, audio, nil, testConfig(), zap.NewNop())
	sleeper := &recordedSleep{}
	resolver.sleep = sleeper.sleep
	return resolver, sleeper
}
