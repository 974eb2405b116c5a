// Package types provides data structures shared by the arbitration engine and
// its transports.
//
// Core Types:
//   - Resource: bitmask of device resources (display, audio, tuner)
//   - Signal: outbound notification kind
//   - Notification: one outbound event as seen by transports
//
// Wire Types:
//   - ModeRequest, ReleaseRequest: inbound request bodies
//   - HolderView, StateView: read-only view of the arbitration state
//
// Example Usage:
//
//	n := types.Notification{
//	    Signal:    types.SignalReleaseResource,
//	    Resources: types.ResourceDisplay | types.ResourceAudio,
//	    App:       3,
//	}
package types
