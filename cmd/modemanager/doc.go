// Package main is the entry point for the mode manager daemon and its
// control tool.
//
// The daemon arbitrates display, audio and tuner ownership between
// applications according to a policy table, and exposes the arbitration
// over HTTP, WebSocket and gRPC.
//
// Configuration:
//   - Environment variables with the MODEMANAGER_ prefix
//   - CLI flags (override env vars)
//   - Defaults for a head unit image
//
// Usage:
//
//	# Run the daemon
//	modemanager serve --config-file /usr/share/mode/defaultmode.xml
//
//	# Development mode (colored logs, debug level)
//	modemanager serve --dev
//
//	# Drive a running daemon
//	modemanager ctl change-mode radio 2 --wait
//	modemanager ctl release-done display|audio 2
//	modemanager ctl watch
//
//	# Validate a policy file
//	modemanager policy check ./defaultmode.xml
package main
