// Package playback decides how a song is played on a client and verifies that
// it actually started.
package playback

import (
	"regexp"

	"hitstertrainer/internal/core"
)

// MobileViewportWidth is the widest touch viewport still treated as mobile.
const MobileViewportWidth = 768

var mobileUserAgentRegex = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// DeviceSignals are the client properties the device class is derived from.
type DeviceSignals struct {
	UserAgent     string `json:"userAgent"`
	Touch         bool   `json:"touch"`
	ViewportWidth int    `json:"viewportWidth"`
}

// Classify returns DeviceMobile when the user agent looks like a handheld or
// when a touch screen has a small viewport.
func Classify(signals DeviceSignals) core.DeviceClass {
	if mobileUserAgentRegex.MatchString(signals.UserAgent) {
		return core.DeviceMobile
	}
	if signals.Touch && signals.ViewportWidth > 0 && signals.ViewportWidth <= MobileViewportWidth {
		return core.DeviceMobile
	}
	return core.DeviceDesktop
}
