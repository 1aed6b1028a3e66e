package playback

import (
	"context"
	"sync"
)

// ReadySignal is resolved exactly once, when the remote player reports the
// device it registered. Later resolutions are ignored.
type ReadySignal struct {
	once     sync.Once
	done     chan struct{}
	deviceID string
}

func NewReadySignal() *ReadySignal {
	return &ReadySignal{done: make(chan struct{})}
}

// Resolve records deviceID and releases every waiter. It reports whether this
// call was the one that resolved the signal.
func (s *ReadySignal) Resolve(deviceID string) bool {
	resolved := false
	s.once.Do(func() {
		s.deviceID = deviceID
		close(s.done)
		resolved = true
	})
	return resolved
}

// DeviceID returns the negotiated device without blocking.
func (s *ReadySignal) DeviceID() (string, bool) {
	select {
	case <-s.done:
		return s.deviceID, true
	default:
		return "", false
	}
}

func (s *ReadySignal) Wait(ctx context.Context) (string, error) {
	select {
	case <-s.done:
		return s.deviceID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
