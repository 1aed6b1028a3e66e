package core

import (
	"context"
	"fmt"
	"strconv"
)

// releaseYearLength is the number of leading release-date characters holding the year.
const releaseYearLength = 4

// Song is one entry of the quiz database. It is loaded once and only referenced.
type Song struct {
	Artist              string `json:"artist"`
	Title               string `json:"title"`
	Year                int    `json:"year"`
	TrackID             string `json:"spotifyId"`
	PreviewURL          string `json:"previewUrl,omitempty"`
	SecondaryPreviewURL string `json:"deezerPreviewUrl,omitempty"`
}

// HasTrackID reports whether the song can be played through the primary provider.
func (s Song) HasTrackID() bool {
	for _, r := range s.TrackID {
		if r != ' ' && r != '\t' {
			return true
		}
	}
	return false
}

// Candidate is a single provider search result. It is produced per search and
// discarded after scoring.
type Candidate struct {
	TrackID     string
	Name        string
	ArtistName  string
	AlbumName   string
	ReleaseDate string
	ImageURL    string
	PreviewURL  string
}

// ReleaseYear returns the year prefix of the release date, or 0 when unknown.
func (c Candidate) ReleaseYear() int {
	if len(c.ReleaseDate) < releaseYearLength {
		return 0
	}
	year, err := strconv.Atoi(c.ReleaseDate[:releaseYearLength])
	if err != nil {
		return 0
	}
	return year
}

// MatchResult is the selected candidate for one song together with its confidence.
type MatchResult struct {
	TrackID             string `json:"spotifyId"`
	Name                string `json:"name"`
	Artist              string `json:"artist"`
	Album               string `json:"album"`
	ReleaseDate         string `json:"releaseDate"`
	ImageURL            string `json:"imageUrl"`
	Confidence          int    `json:"confidence"`
	PreviewURL          string `json:"previewUrl,omitempty"`
	SecondaryPreviewURL string `json:"deezerPreviewUrl,omitempty"`
}

// Preview returns the primary preview when present, else the secondary one.
func (m MatchResult) Preview() string {
	if m.PreviewURL != "" {
		return m.PreviewURL
	}
	return m.SecondaryPreviewURL
}

type LookupStatus string

const (
	// StatusFound means a candidate with a positive confidence was selected
	StatusFound LookupStatus = "found"
	// StatusNotFound means the search failed or nothing scored above zero
	StatusNotFound LookupStatus = "notfound"
)

// DeviceClass selects the playback path. It is decided once per session.
type DeviceClass int

const (
	// DeviceDesktop plays through a remote-controlled streaming session
	DeviceDesktop DeviceClass = iota
	// DeviceMobile plays short preview assets on a local audio element
	DeviceMobile
)

func (d DeviceClass) String() string {
	if d == DeviceMobile {
		return "mobile"
	}
	return "desktop"
}

func (d DeviceClass) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DeviceClass) UnmarshalText(text []byte) error {
	switch string(text) {
	case "mobile":
		*d = DeviceMobile
	case "desktop":
		*d = DeviceDesktop
	default:
		return fmt.Errorf("unknown device class %q", text)
	}
	return nil
}

type PlaybackStatus int

const (
	StatusIdle PlaybackStatus = iota
	StatusLoading
	StatusVerifying
	StatusPlaying
	StatusFailed
)

var playbackStatusNames = [...]string{"idle", "loading", "verifying", "playing", "failed"}

func (s PlaybackStatus) String() string {
	if int(s) < 0 || int(s) >= len(playbackStatusNames) {
		return "unknown"
	}
	return playbackStatusNames[s]
}

func (s PlaybackStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PlaybackStatus) UnmarshalText(text []byte) error {
	for i, name := range playbackStatusNames {
		if name == string(text) {
			*s = PlaybackStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown playback status %q", text)
}

// Terminal reports whether no further transition is possible.
func (s PlaybackStatus) Terminal() bool {
	return s == StatusPlaying || s == StatusFailed
}

// FailureReason is the closed set of outcomes a failed playback attempt can report.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	// ReasonTimeout: preview metadata did not load in time (mobile)
	ReasonTimeout
	// ReasonAudioPlayFailed: the local element rejected the start (mobile)
	ReasonAudioPlayFailed
	// ReasonMobileNotPlaying: the element was still not playing after the grace retry
	ReasonMobileNotPlaying
	// ReasonNoPreview: neither provider supplied a preview asset (mobile)
	ReasonNoPreview
	// ReasonPlayerNotReady: no ready device or no access credential (desktop)
	ReasonPlayerNotReady
	// ReasonTrackNotFound: remote start answered 404
	ReasonTrackNotFound
	// ReasonPremiumRequired: remote start answered 403
	ReasonPremiumRequired
	// ReasonSpotifyUnavailable: remote start answered 502 or 503
	ReasonSpotifyUnavailable
	// ReasonPlaybackFailed: any other remote rejection
	ReasonPlaybackFailed
	// ReasonNetworkError: transport fault talking to the provider
	ReasonNetworkError
	// ReasonNoActiveDevice: verification found no playback session
	ReasonNoActiveDevice
	// ReasonNotPlaying: verification found playback paused
	ReasonNotPlaying
	// ReasonWrongTrack: verification found another item playing
	ReasonWrongTrack
	// ReasonLocalFile: verification found a local file playing
	ReasonLocalFile
)

var failureReasonNames = [...]string{
	"",
	"TIMEOUT",
	"AUDIO_PLAY_FAILED",
	"MOBILE_NOT_PLAYING",
	"NO_PREVIEW",
	"PLAYER_NOT_READY",
	"TRACK_NOT_FOUND",
	"PREMIUM_REQUIRED",
	"SPOTIFY_UNAVAILABLE",
	"PLAYBACK_FAILED",
	"NETWORK_ERROR",
	"NO_ACTIVE_DEVICE",
	"NOT_PLAYING",
	"WRONG_TRACK",
	"LOCAL_FILE",
}

func (r FailureReason) String() string {
	if int(r) < 0 || int(r) >= len(failureReasonNames) {
		return "UNKNOWN"
	}
	return failureReasonNames[r]
}

func (r FailureReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *FailureReason) UnmarshalText(text []byte) error {
	for i, name := range failureReasonNames {
		if name == string(text) {
			*r = FailureReason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown failure reason %q", text)
}

// AllFailureReasons lists every reason except ReasonNone.
func AllFailureReasons() []FailureReason {
	reasons := make([]FailureReason, 0, len(failureReasonNames)-1)
	for i := 1; i < len(failureReasonNames); i++ {
		reasons = append(reasons, FailureReason(i))
	}
	return reasons
}

// PlaybackAttempt is the transient state of one song-play request.
type PlaybackAttempt struct {
	Mode       DeviceClass      `json:"mode"`
	Status     PlaybackStatus   `json:"status"`
	Reason     FailureReason    `json:"reason,omitempty"`
	TrackID    string           `json:"trackId"`
	PreviewURL string           `json:"previewUrl,omitempty"`
	History    []PlaybackStatus `json:"history"`
}

// Succeeded reports whether the attempt ended in StatusPlaying.
func (a *PlaybackAttempt) Succeeded() bool {
	return a.Status == StatusPlaying
}

// PlaybackState is the provider's view of the current playback session.
type PlaybackState struct {
	HasSession bool
	Playing    bool
	ItemID     string
	IsLocal    bool
}

type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
}

// TrackSearcher is the primary provider's search surface.
type TrackSearcher interface {
	SearchCandidates(ctx context.Context, artist, title string) ([]Candidate, error)
	Candidate(ctx context.Context, trackID string) (*Candidate, error)
}

// PreviewSearcher is the secondary provider used to find preview assets.
type PreviewSearcher interface {
	SearchTracks(ctx context.Context, query string) ([]Candidate, error)
}

// RemotePlayer controls playback on a remote streaming device.
type RemotePlayer interface {
	Authenticated() bool
	Play(ctx context.Context, deviceID, trackID string) error
	Pause(ctx context.Context, deviceID string) error
	// Resume continues the paused item without replacing it.
	Resume(ctx context.Context, deviceID string) error
	PlaybackState(ctx context.Context) (PlaybackState, error)
}

// AudioElement is a local short-preview player.
type AudioElement interface {
	// Load assigns the asset and returns once its metadata is available.
	Load(ctx context.Context, assetURL string) error
	Play(ctx context.Context) error
	Playing() bool
	Pause()
}
