package types

import "time"

// Signal names an outbound notification
type Signal string

const (
	SignalChangedMode     Signal = "changed_mode"
	SignalReleaseResource Signal = "release_resource"
	SignalEndedMode       Signal = "ended_mode"
	SignalSuspendMode     Signal = "suspend_mode"
	SignalResumeMode      Signal = "resume_mode"
)

// Notification is a single outbound event delivered to transports
type Notification struct {
	ID        string    `json:"id"`
	Signal    Signal    `json:"signal"`
	Mode      string    `json:"mode,omitempty"`
	App       int32     `json:"app"`
	Resources Resource  `json:"resources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
