package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "TRUETEMP_LOG_LEVEL"

// Initialize installs the global logger at the given level, writing to
// stderr. An empty level falls back to TRUETEMP_LOG_LEVEL; if that is empty
// too, or the level is "off", logging is silent.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	l, err := New(level, os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// New builds a console logger at level writing to w
func New(level string, w zapcore.WriteSyncer) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" || level == "off" || level == "none" {
		return zap.NewNop(), nil
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: use debug, info, warn, error or off", level)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(w), zap.NewAtomicLevelAt(zapLevel))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

// InitializeFromEnv initializes the logger from the TRUETEMP_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogAPIRequest logs an outgoing API request.
// Headers are never logged since they carry the bearer token.
func LogAPIRequest(method, path string, attempt int) {
	Debug("API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("attempt", attempt),
	)
}

// LogAPIResponse logs the outcome of an API request
func LogAPIResponse(method, path string, statusCode int, bodyLen int, elapsed time.Duration) {
	Debug("API response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", statusCode),
		zap.Int("length", bodyLen),
		zap.Duration("elapsed", elapsed),
	)
}

// LogAuthStage logs a login handshake stage transition
func LogAuthStage(stage string, err error) {
	if err != nil {
		Warn("Authentication stage failed",
			zap.String("stage", stage),
			zap.Error(err),
		)
		return
	}
	Debug("Authentication stage completed", zap.String("stage", stage))
}

// LogCacheEvent logs a credential cache event (never the cookie values)
func LogCacheEvent(event, path string, cookies int) {
	Debug("Credential cache",
		zap.String("event", event),
		zap.String("path", path),
		zap.Int("cookies", cookies),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
