package netatmo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/truetemp/internal/logging"
)

// HeaderProvider supplies auth headers and can be told that the token it
// handed out went stale.
// *AuthManager implements it.
type HeaderProvider interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
	// InvalidateToken drops the session if stale is still its token
	InvalidateToken(stale string)
}

// Response is a decoded JSON object returned by the API
type Response map[string]interface{}

// Client executes API calls with auth headers attached and re-authenticates
// once when the API rejects the session
type Client struct {
	// BaseURL is the API base URL (default: https://api.netatmo.com)
	BaseURL string

	// HTTPClient is the underlying HTTP client; its Timeout bounds each attempt
	HTTPClient *http.Client

	// Auth supplies headers and is invalidated on authentication failures
	Auth HeaderProvider
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = httpClient
	}
}

// WithTimeout sets the per-attempt request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.SetTimeout(timeout)
	}
}

// NewClient creates an API client that authenticates through auth
func NewClient(auth HeaderProvider, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL:    DefaultAPIURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Auth:       auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	c.HTTPClient.Timeout = timeout
}

// Timeout returns the per-attempt request timeout
func (c *Client) Timeout() time.Duration {
	if c.HTTPClient == nil {
		return 0
	}
	return c.HTTPClient.Timeout
}

// Get performs a GET and decodes the response object
func (c *Client) Get(ctx context.Context, path string, params url.Values) (Response, error) {
	var resp Response
	if err := c.Do(ctx, http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Post performs a POST with an optional JSON body and decodes the response object
func (c *Client) Post(ctx context.Context, path string, params url.Values, body interface{}) (Response, error) {
	var resp Response
	if err := c.Do(ctx, http.MethodPost, path, params, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetInto performs a GET and decodes the response into out
func (c *Client) GetInto(ctx context.Context, path string, params url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, params, nil, out)
}

// PostInto performs a POST and decodes the response into out
func (c *Client) PostInto(ctx context.Context, path string, params url.Values, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, params, body, out)
}

// attemptResult is the outcome of one HTTP attempt
type attemptResult struct {
	status      int
	body        []byte
	err         error
	authFailure bool
}

// Do executes one logical API call.
//
// Network failures are never retried. A 403 carrying any body (or one whose
// body cannot be read) is taken as a stale session: the session is
// invalidated and the call retried once with fresh headers. Every other
// failure is returned immediately. A nil out only validates the body.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindAPI, Message: "failed to encode request body", Err: err}
		}
	}

	headers, err := c.Auth.AuthHeaders(ctx)
	if err != nil {
		return err
	}

	result := c.attempt(ctx, method, path, params, payload, headers, 1)

	if result.authFailure {
		logging.Warn("Session rejected, re-authenticating",
			zap.String("method", method),
			zap.String("path", path),
		)
		c.Auth.InvalidateToken(bearerToken(headers))

		headers, err = c.Auth.AuthHeaders(ctx)
		if err != nil {
			return err
		}

		result = c.attempt(ctx, method, path, params, payload, headers, 2)
		if result.authFailure {
			e := NewHTTPError(result.status, result.body)
			e.Message += " (authentication retry exhausted)"
			return e
		}
	}

	if result.err != nil {
		return result.err
	}

	return decode(result.status, result.body, out)
}

// attempt sends a single request and classifies the response
func (c *Client) attempt(ctx context.Context, method, path string, params url.Values, payload []byte, headers http.Header, attempt int) attemptResult {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.requestURL(path, params), reqBody)
	if err != nil {
		return attemptResult{err: &Error{Kind: KindAPI, Message: "failed to create request", Err: err}}
	}
	req.Header = headers.Clone()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.LogAPIRequest(method, path, attempt)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return attemptResult{err: NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, readErr := io.ReadAll(resp.Body)
	logging.LogAPIResponse(method, path, resp.StatusCode, len(data), time.Since(start))

	status := resp.StatusCode
	switch {
	case status >= 200 && status < 300:
		if readErr != nil {
			return attemptResult{status: status, err: NewNetworkError("failed to read response body", readErr)}
		}
		return attemptResult{status: status, body: data}
	case isAuthenticationFailure(status, data, readErr):
		return attemptResult{status: status, body: data, authFailure: true}
	default:
		return attemptResult{status: status, body: data, err: NewHTTPError(status, data)}
	}
}

// bearerToken returns the token carried by an Authorization header
func bearerToken(headers http.Header) string {
	return strings.TrimPrefix(headers.Get("Authorization"), "Bearer ")
}

// isAuthenticationFailure classifies a non-2xx response. Netatmo reuses 403
// for expired sessions with arbitrary bodies, so any 403 with content counts,
// as does a 403 whose body could not even be read. A blank 403 is a server error.
func isAuthenticationFailure(status int, body []byte, readErr error) bool {
	if status != http.StatusForbidden {
		return false
	}
	if readErr != nil {
		return true
	}
	return strings.TrimSpace(string(body)) != ""
}

func (c *Client) requestURL(path string, params url.Values) string {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func decode(status int, body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return NewDecodeError(status, "empty response body", nil)
	}

	if out == nil {
		if !json.Valid(body) {
			return NewDecodeError(status, "invalid JSON response", nil)
		}
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return NewDecodeError(status, "invalid JSON response", err)
	}
	return nil
}
