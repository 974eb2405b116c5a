package policy

import (
	"fmt"
	"strings"
)

// Well-known modes and applications.
const (
	// DefaultMode is reinserted at the bottom of the display stack whenever
	// its previous bottom holder goes away.
	DefaultMode       = "home"
	DefaultApp  int32 = 0

	// IdleMode is not a real mode. Requesting it tears down every resource
	// the caller holds; its policy is registered under IdleApp.
	IdleMode       = "idle"
	IdleApp  int32 = -1

	// OverlayMode is announced before any display holder that is not a full
	// takeover, on behalf of the on-screen-display application.
	OverlayMode       = "view"
	OverlayApp  int32 = 100

	// BackgroundSuffix names the variant of a mode that keeps audio but gives
	// up the display.
	BackgroundSuffix = "bg"
)

// Entry is one immutable policy record, keyed by (Mode, App).
type Entry struct {
	Mode      string `json:"mode"`
	App       int32  `json:"app"`
	Audio     int32  `json:"audio"`
	Display   int32  `json:"display"`
	Tuner     int32  `json:"tuner"`
	Full      bool   `json:"full"`
	Resume    bool   `json:"resume"`
	Mixing    bool   `json:"mixing"`
	Exclusive int32  `json:"exclusive"`
}

// NeedsAudio reports whether the mode requires the audio resource.
func (e Entry) NeedsAudio() bool { return e.Audio != 0 }

// NeedsDisplay reports whether the mode requires the display resource.
func (e Entry) NeedsDisplay() bool { return e.Display != 0 }

// NeedsTuner reports whether the mode requires the tuner resource.
func (e Entry) NeedsTuner() bool { return e.Tuner != 0 }

// String renders the entry the way it is logged at debug level.
func (e Entry) String() string {
	return fmt.Sprintf("%s@%d A=%d D=%d T=%d F=%t R=%t M=%t E=%d",
		e.Mode, e.App, e.Audio, e.Display, e.Tuner, e.Full, e.Resume, e.Mixing, e.Exclusive)
}

// BackgroundName returns the name of the background variant of mode.
func BackgroundName(mode string) string {
	return mode + BackgroundSuffix
}

// IsBackground reports whether mode names a background variant.
func IsBackground(mode string) bool {
	return len(mode) > len(BackgroundSuffix) && strings.HasSuffix(mode, BackgroundSuffix)
}

// ForegroundName strips the background suffix from mode.
func ForegroundName(mode string) string {
	if !IsBackground(mode) {
		return mode
	}
	return strings.TrimSuffix(mode, BackgroundSuffix)
}
