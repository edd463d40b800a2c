package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/muurk/truetemp/internal/netatmo"
)

// Environment variable names
const (
	EnvUsername   = "NETATMO_USERNAME"
	EnvPassword   = "NETATMO_PASSWORD"
	EnvScope      = "NETATMO_SCOPE"
	EnvHomeID     = "NETATMO_HOME_ID"
	EnvCookieFile = "NETATMO_COOKIE_FILE"
	EnvTimeout    = "NETATMO_TIMEOUT"
	EnvAuthURL    = "NETATMO_AUTH_URL"
	EnvAPIURL     = "NETATMO_API_URL"
)

// Env is the process environment relevant to truetemp
type Env struct {
	Username   string        `env:"NETATMO_USERNAME"`
	Password   string        `env:"NETATMO_PASSWORD"`
	Scope      string        `env:"NETATMO_SCOPE"`
	HomeID     string        `env:"NETATMO_HOME_ID"`
	CookieFile string        `env:"NETATMO_COOKIE_FILE"`
	Timeout    time.Duration `env:"NETATMO_TIMEOUT"`
	AuthURL    string        `env:"NETATMO_AUTH_URL" envDefault:"https://auth.netatmo.com"`
	APIURL     string        `env:"NETATMO_API_URL" envDefault:"https://api.netatmo.com"`
}

// LoadEnv reads .env files (default: ./.env) into the environment and then
// parses it. Variables already set in the environment are not overridden,
// and missing .env files are ignored.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, netatmo.NewConfigurationError(fmt.Sprintf("failed to load %s: %v", file, err))
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, netatmo.NewConfigurationError(fmt.Sprintf("invalid environment: %v", err))
	}
	return &e, nil
}

// Settings is the effective configuration after merging the environment
// with the preference registry
type Settings struct {
	Credentials netatmo.Credentials
	HomeID      string
	CookieFile  string
	Timeout     time.Duration
	AuthURL     string
	APIURL      string
}

// Resolve merges e with the preferences of reg (which may be nil).
// The environment wins; the timeout falls back to netatmo.DefaultTimeout and
// the cookie file to DefaultCookiePath.
func Resolve(e *Env, reg *Registry) (*Settings, error) {
	s := &Settings{
		Credentials: netatmo.Credentials{
			Username: strings.TrimSpace(e.Username),
			Password: e.Password,
			Scope:    e.Scope,
		},
		HomeID:     e.HomeID,
		CookieFile: e.CookieFile,
		Timeout:    e.Timeout,
		AuthURL:    e.AuthURL,
		APIURL:     e.APIURL,
	}

	if reg != nil && reg.Preferences != nil {
		if s.HomeID == "" {
			s.HomeID = reg.Preferences.DefaultHomeID
		}
		if s.Timeout <= 0 {
			s.Timeout = reg.Preferences.Timeout
		}
	}

	if s.Timeout <= 0 {
		s.Timeout = netatmo.DefaultTimeout
	}
	if s.AuthURL == "" {
		s.AuthURL = netatmo.DefaultAuthURL
	}
	if s.APIURL == "" {
		s.APIURL = netatmo.DefaultAPIURL
	}

	if s.CookieFile == "" {
		path, err := DefaultCookiePath()
		if err != nil {
			return nil, netatmo.NewConfigurationError(fmt.Sprintf("cannot determine cookie file location: %v", err))
		}
		s.CookieFile = path
	}

	return s, nil
}

// RequireCredentials reports a configuration error naming every missing
// credential variable
func (s *Settings) RequireCredentials() error {
	var missing []string
	if s.Credentials.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if s.Credentials.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return netatmo.NewConfigurationError("missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}
