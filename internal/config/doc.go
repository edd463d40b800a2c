// Package config loads truetemp's configuration.
//
// Two sources are merged into a Settings value:
//   - the environment (optionally seeded from a .env file), parsed with
//     caarlos0/env: NETATMO_USERNAME, NETATMO_PASSWORD, NETATMO_SCOPE,
//     NETATMO_HOME_ID, NETATMO_COOKIE_FILE, NETATMO_TIMEOUT,
//     NETATMO_AUTH_URL and NETATMO_API_URL
//   - a YAML preference registry holding the default home, the request
//     timeout and the names of homes and rooms seen so far
//
// Environment variables always win over the registry.
//
// # File Locations
//
// The registry and the default cookie cache live in the same directory:
//   - Linux: $XDG_CONFIG_HOME/truetemp or $HOME/.config/truetemp
//   - macOS: $HOME/.config/truetemp
//   - Windows: %LOCALAPPDATA%\truetemp
//
// # Security
//
// The registry NEVER stores credentials or session tokens. Credentials only
// come from the environment; session cookies are kept by package cookiestore.
//
// # Usage Example
//
//	e, err := config.LoadEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings, err := config.Resolve(e, reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := settings.RequireCredentials(); err != nil {
//	    log.Fatal(err)
//	}
package config
