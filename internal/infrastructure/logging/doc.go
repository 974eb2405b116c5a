// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for log collectors
//   - Development: colored console output for bench work on a target
//
// Level usage in the mode manager:
//   - Debug: stack dumps after each arbitration command, notification traces
//   - Info: lifecycle (policy loaded, transports up, shutdown)
//   - Warn: unknown (mode, app) pairs and rejected no-op requests
//   - Error: notifications that could not be delivered
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("policy loaded", zap.Int("modes", table.Len()))
//	logger.Error("webhook delivery failed", zap.Error(err))
package logging
