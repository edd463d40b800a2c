package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"INFO", false, true},
		{" warn ", false, false},
		{"error", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(tt.level, zapcore.AddSync(&buf))
			require.NoError(t, err)

			l.Debug("debug line")
			l.Info("info line")

			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Equal(t, tt.infoSeen, bytes.Contains(buf.Bytes(), []byte("info line")))
		})
	}
}

func TestNew_Silent(t *testing.T) {
	for _, level := range []string{"", "off", "none"} {
		var buf bytes.Buffer
		l, err := New(level, zapcore.AddSync(&buf))
		require.NoError(t, err)
		l.Error("nothing")
		assert.Zero(t, buf.Len(), "level %q", level)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("chatty", zapcore.AddSync(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "chatty"`)
}

func TestInitialize_FromEnv(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetLogger(prev) })

	t.Setenv(LogLevelEnvVar, "")
	require.NoError(t, InitializeFromEnv())
	assert.False(t, GetLogger().Core().Enabled(zapcore.ErrorLevel))

	t.Setenv(LogLevelEnvVar, "debug")
	require.NoError(t, InitializeFromEnv())
	assert.True(t, GetLogger().Core().Enabled(zapcore.DebugLevel))

	require.Error(t, Initialize("verbose"))
}

func TestHelpers_NeverLogSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := GetLogger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	LogAPIRequest("POST", "/api/truetemperature", 1)
	LogAPIResponse("POST", "/api/truetemperature", 403, 12, 0)
	LogAuthStage("csrf", nil)
	LogAuthStage("postlogin", errors.New("boom"))
	LogCacheEvent("saved", "/tmp/cookies.json", 3)

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)

	assert.Equal(t, "API request", entries[0].Message)
	assert.EqualValues(t, 1, entries[0].ContextMap()["attempt"])
	assert.EqualValues(t, 403, entries[1].ContextMap()["status_code"])
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, "postlogin", entries[3].ContextMap()["stage"])
	assert.EqualValues(t, 3, entries[4].ContextMap()["cookies"])

	for _, e := range entries {
		for k := range e.ContextMap() {
			assert.NotContains(t, []string{"authorization", "token", "cookie_value"}, k)
		}
	}
}
