package netatmo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// KindConfiguration indicates missing or invalid local configuration (fatal, before any I/O)
	KindConfiguration ErrorKind = iota
	// KindAuthentication indicates a login handshake stage failed
	KindAuthentication
	// KindAPI indicates a failed API call (network, decode, or non-2xx status)
	KindAPI
	// KindValidation indicates a caller-supplied value is out of range
	KindValidation
	// KindRoomNotFound indicates the requested room does not exist in the home
	KindRoomNotFound
	// KindHomeNotFound indicates the requested home does not exist (or no homes at all)
	KindHomeNotFound
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration Error"
	case KindAuthentication:
		return "Authentication Error"
	case KindAPI:
		return "API Error"
	case KindValidation:
		return "Validation Error"
	case KindRoomNotFound:
		return "Room Not Found"
	case KindHomeNotFound:
		return "Home Not Found"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// NetworkClass sub-classifies API errors that never produced a usable HTTP response
type NetworkClass int

const (
	NetworkNone NetworkClass = iota
	NetworkGeneral
	NetworkTimeout
	NetworkConnectionRefused
	NetworkDNS
	NetworkDecode
)

// Error is the single error type returned by the netatmo packages.
// Callers switch on Kind rather than on concrete types.
type Error struct {
	Kind       ErrorKind    // Category of error
	Message    string       // Human-readable error message
	StatusCode int          // HTTP status code, 0 when unknown
	Stage      string       // Failing handshake stage (authentication errors)
	ResourceID string       // Offending home or room ID (not-found errors)
	Name       string       // Room name that matched nothing (lookups by name)
	Network    NetworkClass // Network sub-class (API errors)
	Err        error        // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// NewAuthenticationError creates an authentication error for a failed handshake stage.
// The stage name doubles as the message.
func NewAuthenticationError(stage string, err error) *Error {
	return &Error{
		Kind:    KindAuthentication,
		Message: stage,
		Stage:   stage,
		Err:     err,
	}
}

// NewAPIError creates an API error with a known HTTP status (0 when unknown)
func NewAPIError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindAPI,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewHTTPError creates an API error for a non-2xx response.
// The message always starts with "HTTP <status>".
func NewHTTPError(statusCode int, body []byte) *Error {
	msg := fmt.Sprintf("HTTP %d", statusCode)
	if detail := errorDetail(body); detail != "" {
		msg += ": " + detail
	}
	return NewAPIError(statusCode, msg)
}

// NewNetworkError creates an API error for a transport failure with automatic classification
func NewNetworkError(message string, err error) *Error {
	class := ClassifyNetworkError(err)
	prefix := "Network error"
	if class == NetworkTimeout {
		prefix = "Network error (request timeout)"
	}
	return &Error{
		Kind:    KindAPI,
		Message: fmt.Sprintf("%s: %s", prefix, message),
		Network: class,
		Err:     err,
	}
}

// NewDecodeError creates an API error for a 2xx response whose body could not be used.
// Decode failures are reported as network-class errors.
func NewDecodeError(statusCode int, message string, err error) *Error {
	return &Error{
		Kind:       KindAPI,
		Message:    "Network error: " + message,
		StatusCode: statusCode,
		Network:    NetworkDecode,
		Err:        err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewRoomNotFoundError creates a not-found error for a room
func NewRoomNotFoundError(roomID string) *Error {
	return &Error{
		Kind:       KindRoomNotFound,
		Message:    fmt.Sprintf("Room %s not found", roomID),
		ResourceID: roomID,
	}
}

// NewRoomNameNotFoundError creates a not-found error for a lookup by room
// name. ResourceID stays empty since no ID was involved.
func NewRoomNameNotFoundError(name string) *Error {
	return &Error{
		Kind:    KindRoomNotFound,
		Message: fmt.Sprintf("No thermostat room named %q", name),
		Name:    name,
	}
}

// NewHomeNotFoundError creates a not-found error for a home.
// An empty homeID means the account has no homes at all.
func NewHomeNotFoundError(homeID string) *Error {
	msg := "No homes found"
	if homeID != "" {
		msg = fmt.Sprintf("Home %s not found", homeID)
	}
	return &Error{
		Kind:       KindHomeNotFound,
		Message:    msg,
		ResourceID: homeID,
	}
}

// ClassifyNetworkError analyzes a transport error and returns its network class
func ClassifyNetworkError(err error) NetworkClass {
	if err == nil {
		return NetworkNone
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return NetworkTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetworkTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return NetworkConnectionRefused
	}

	return NetworkGeneral
}

func asError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	e, ok := asError(err)
	return ok && e.Kind == kind
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return isKind(err, KindConfiguration)
}

// IsAuthenticationError checks if an error is a handshake failure
func IsAuthenticationError(err error) bool {
	return isKind(err, KindAuthentication)
}

// IsAPIError checks if an error is an API error (including network-class ones)
func IsAPIError(err error) bool {
	return isKind(err, KindAPI)
}

// IsNetworkError checks if an error is a network-class API error
func IsNetworkError(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindAPI && e.Network != NetworkNone
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isKind(err, KindValidation)
}

// IsNotFoundError checks if an error is a room or home not-found error
func IsNotFoundError(err error) bool {
	return isKind(err, KindRoomNotFound) || isKind(err, KindHomeNotFound)
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if e, ok := asError(err); ok {
		return e.StatusCode
	}
	return 0
}

// errorDetail extracts a short description from an error body.
// Netatmo uses both {"error": "..."} and {"error": {"code": n, "message": "..."}}.
func errorDetail(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil && len(payload.Error) > 0 {
		var s string
		if json.Unmarshal(payload.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}

	if len(trimmed) > 200 {
		return trimmed[:200] + "..."
	}
	return trimmed
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) []string {
	e, ok := asError(err)
	if !ok {
		return []string{"An unexpected error occurred. Please try again."}
	}

	switch e.Kind {
	case KindConfiguration:
		return []string{
			"Set NETATMO_USERNAME and NETATMO_PASSWORD in the environment",
			"or in a .env file in the current directory",
		}
	case KindAuthentication:
		return []string{
			"Check your Netatmo username and password",
			"Run 'truetemp login' to retry the login from scratch",
			"Netatmo may have changed its login flow; check for an update",
		}
	case KindAPI:
		switch e.Network {
		case NetworkTimeout:
			return []string{
				"Netatmo did not respond in time",
				"Try increasing NETATMO_TIMEOUT",
			}
		case NetworkConnectionRefused, NetworkDNS, NetworkGeneral:
			return []string{
				"Check your internet connection",
				"Verify NETATMO_API_URL / NETATMO_AUTH_URL if you overrode them",
			}
		case NetworkDecode:
			return []string{"Netatmo returned a response that could not be parsed"}
		}
		if e.StatusCode == 403 {
			return []string{
				"The session was rejected even after logging in again",
				"Run 'truetemp logout' and try again",
			}
		}
		if e.StatusCode >= 500 {
			return []string{"Netatmo is having problems; try again later"}
		}
		return []string{"Check the request parameters"}
	case KindValidation:
		return []string{"Check the values passed on the command line"}
	case KindRoomNotFound, KindHomeNotFound:
		return []string{"Run 'truetemp list-rooms' to see available rooms and homes"}
	default:
		return nil
	}
}
