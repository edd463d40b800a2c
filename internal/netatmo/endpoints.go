package netatmo

import "time"

const (
	// DefaultAuthURL is the base URL of the Netatmo web login flow
	DefaultAuthURL = "https://auth.netatmo.com"

	// DefaultAPIURL is the base URL of the Netatmo JSON API
	DefaultAPIURL = "https://api.netatmo.com"

	// UserAgent is sent on every request; the web API expects the app identifier
	UserAgent = "netatmo-home"

	// AccessTokenCookie carries the bearer token after a successful login POST
	AccessTokenCookie = "netatmocomaccess_token"

	// DefaultTimeout is the default per-request HTTP timeout
	DefaultTimeout = 10 * time.Second

	// DefaultHandshakeTimeout bounds a whole four-step login handshake
	DefaultHandshakeTimeout = 30 * time.Second
)

// Login handshake paths, relative to the auth base URL
const (
	LoginPagePath = "/en-us/access/login"
	CSRFPath      = "/access/csrf"
	PostLoginPath = "/access/postlogin"
	KeychainPath  = "/access/keychain"
)

// API paths, relative to the API base URL
const (
	HomesDataPath       = "/api/homesdata"
	HomeStatusPath      = "/api/homestatus"
	TrueTemperaturePath = "/api/truetemperature"
)

// HandshakeStage identifies one step of the login handshake.
// The String value is the human-readable failure message for that stage.
type HandshakeStage int

const (
	StageSessionCookie HandshakeStage = iota + 1
	StageCSRFToken
	StageCredentials
	StageFinalize
)

// HandshakeStages lists the stages in execution order
var HandshakeStages = []HandshakeStage{
	StageSessionCookie,
	StageCSRFToken,
	StageCredentials,
	StageFinalize,
}

// String returns the failure description of the stage
func (s HandshakeStage) String() string {
	switch s {
	case StageSessionCookie:
		return "Failed to obtain session cookie"
	case StageCSRFToken:
		return "Failed to obtain CSRF token"
	case StageCredentials:
		return "Failed to obtain access token"
	case StageFinalize:
		return "Failed to complete authentication"
	default:
		return "Authentication failed"
	}
}

// Label returns a short progress label for the stage
func (s HandshakeStage) Label() string {
	switch s {
	case StageSessionCookie:
		return "Open login session"
	case StageCSRFToken:
		return "Fetch CSRF token"
	case StageCredentials:
		return "Submit credentials"
	case StageFinalize:
		return "Finalize login"
	default:
		return "Unknown stage"
	}
}
