// Package logging provides structured logging for truetemp.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used by the Netatmo client and the CLI. Logging is silent
// unless TRUETEMP_LOG_LEVEL (or the --log-level flag) selects a level, so
// CLI output stays clean by default. Log output goes to stderr.
//
// # Log Levels
//
//   - Debug: request/response lines, handshake stages, cache events
//   - Info: completed operations (temperature set, login succeeded)
//   - Warn: recoverable issues (stale session, cache write failures)
//   - Error: failures surfaced to the user
//
// # Structured Logging
//
//	logging.Info("Temperature set",
//	    zap.String("room_id", "2255031728"),
//	    zap.Float64("corrected_temperature", 20.5),
//	)
//
// # Secrets
//
// Passwords, bearer tokens and cookie values are never passed to the logger.
// The helpers only accept metadata (paths, status codes, counts).
package logging
