package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by provider calls made before authentication
	ErrNotAuthenticated = errors.New("client not authenticated")
	// ErrPlayerNotReady is returned when no playback device has been negotiated
	ErrPlayerNotReady = errors.New("player not ready")
	// ErrNothingToResume is returned when a session has no started song
	ErrNothingToResume = errors.New("nothing to resume")
	// ErrSongIndex is returned for out-of-range song positions
	ErrSongIndex = errors.New("song index out of range")
)

// RemoteError is a non-success answer from the primary provider.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote request failed with status %d", e.Status)
	}
	return fmt.Sprintf("remote request failed with status %d: %s", e.Status, e.Message)
}

// RemoteStatus extracts the HTTP status of a RemoteError anywhere in err's chain.
func RemoteStatus(err error) (int, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Status, true
	}
	return 0, false
}
