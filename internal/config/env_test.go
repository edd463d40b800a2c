package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/truetemp/internal/netatmo"
)

var allEnvVars = []string{
	EnvUsername, EnvPassword, EnvScope, EnvHomeID,
	EnvCookieFile, EnvTimeout, EnvAuthURL, EnvAPIURL,
}

// clearEnv unsets every NETATMO_ variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUsername, "me@example.com")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvHomeID, "home-1")

	e, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", e.Username)
	assert.Equal(t, "secret", e.Password)
	assert.Equal(t, 5*time.Second, e.Timeout)
	assert.Equal(t, "home-1", e.HomeID)
	assert.Equal(t, netatmo.DefaultAuthURL, e.AuthURL)
	assert.Equal(t, netatmo.DefaultAPIURL, e.APIURL)
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPassword, "from-environment")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(
		"NETATMO_USERNAME=dotenv@example.com\n"+
			"NETATMO_PASSWORD=from-dotenv\n"+
			"NETATMO_API_URL=http://localhost:9999\n"), 0600))

	e, err := LoadEnv(file)
	require.NoError(t, err)

	assert.Equal(t, "dotenv@example.com", e.Username)
	assert.Equal(t, "from-environment", e.Password, "environment wins over .env")
	assert.Equal(t, "http://localhost:9999", e.APIURL)
}

func TestLoadEnv_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")

	_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, netatmo.IsConfigurationError(err))
}

func TestResolve_EnvironmentWins(t *testing.T) {
	reg := NewRegistry("")
	reg.SetDefaultHome("registry-home")
	reg.Preferences.Timeout = 20 * time.Second

	s, err := Resolve(&Env{
		Username:   " me@example.com ",
		Password:   "secret",
		HomeID:     "env-home",
		Timeout:    3 * time.Second,
		CookieFile: "/tmp/cookies.json",
	}, reg)
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", s.Credentials.Username)
	assert.Equal(t, "env-home", s.HomeID)
	assert.Equal(t, 3*time.Second, s.Timeout)
	assert.Equal(t, "/tmp/cookies.json", s.CookieFile)
}

func TestResolve_RegistryFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg := NewRegistry("")
	reg.SetDefaultHome("registry-home")
	reg.Preferences.Timeout = 20 * time.Second

	s, err := Resolve(&Env{}, reg)
	require.NoError(t, err)

	assert.Equal(t, "registry-home", s.HomeID)
	assert.Equal(t, 20*time.Second, s.Timeout)

	want, err := DefaultCookiePath()
	require.NoError(t, err)
	assert.Equal(t, want, s.CookieFile)
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Resolve(&Env{}, nil)
	require.NoError(t, err)

	assert.Empty(t, s.HomeID)
	assert.Equal(t, netatmo.DefaultTimeout, s.Timeout)
	assert.Equal(t, netatmo.DefaultAuthURL, s.AuthURL)
	assert.Equal(t, netatmo.DefaultAPIURL, s.APIURL)
}

func TestRequireCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds netatmo.Credentials
		want  string
	}{
		{"both missing", netatmo.Credentials{}, "NETATMO_USERNAME, NETATMO_PASSWORD"},
		{"password missing", netatmo.Credentials{Username: "u"}, "NETATMO_PASSWORD"},
		{"username missing", netatmo.Credentials{Password: "p"}, "NETATMO_USERNAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Settings{Credentials: tt.creds}).RequireCredentials()
			require.Error(t, err)
			assert.True(t, netatmo.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, (&Settings{Credentials: netatmo.Credentials{Username: "u", Password: "p"}}).RequireCredentials())
}
