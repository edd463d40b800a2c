package netatmo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/muurk/truetemp/internal/cookiestore"
	"github.com/muurk/truetemp/internal/logging"
)

// handshakeKey is the single singleflight key: there is only ever one session
const handshakeKey = "handshake"

// maxHandshakeBody caps how much of a login page we read
const maxHandshakeBody = 1 << 20

// Credentials are the account secrets. They are never persisted.
type Credentials struct {
	Username string
	Password string
	// Scope is sent with the login form when set
	Scope string
}

// CookieStore is the durable cookie record used to survive restarts
type CookieStore interface {
	Load() (cookiestore.Record, bool)
	Save(record cookiestore.Record) error
	Clear() error
}

// StageObserver is notified when a handshake stage starts (done=false)
// and when it ends (done=true, err set on failure).
type StageObserver func(stage HandshakeStage, done bool, err error)

// AuthManager owns the session token. It hands out auth headers to any number
// of concurrent callers and runs at most one login handshake at a time.
type AuthManager struct {
	creds            Credentials
	store            CookieStore
	authURL          string
	httpClient       *http.Client
	handshakeTimeout time.Duration
	observer         StageObserver

	// mu guards token only; it is never held across network I/O
	mu    sync.RWMutex
	token string

	// storeMu orders token publication and invalidation with the matching
	// cookie file Save or Clear, so memory and disk never disagree
	storeMu sync.Mutex

	flight singleflight.Group
}

// AuthOption configures an AuthManager
type AuthOption func(*AuthManager)

// WithAuthURL overrides the base URL of the login flow
func WithAuthURL(authURL string) AuthOption {
	return func(m *AuthManager) {
		m.authURL = strings.TrimRight(authURL, "/")
	}
}

// WithAuthHTTPClient sets the HTTP client whose transport and timeout the
// handshake uses. Its Jar and CheckRedirect are replaced per handshake.
func WithAuthHTTPClient(client *http.Client) AuthOption {
	return func(m *AuthManager) {
		m.httpClient = client
	}
}

// WithHandshakeTimeout bounds a whole handshake
func WithHandshakeTimeout(timeout time.Duration) AuthOption {
	return func(m *AuthManager) {
		m.handshakeTimeout = timeout
	}
}

// WithStageObserver registers a handshake progress callback
func WithStageObserver(observer StageObserver) AuthOption {
	return func(m *AuthManager) {
		m.observer = observer
	}
}

// NewAuthManager creates an AuthManager. It fails with a configuration error
// when a required credential is missing, before any I/O. A cached session is
// loaded from store (which may be nil) and trusted until a request proves it stale.
func NewAuthManager(creds Credentials, store CookieStore, opts ...AuthOption) (*AuthManager, error) {
	var missing []string
	if strings.TrimSpace(creds.Username) == "" {
		missing = append(missing, "username")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, NewConfigurationError("missing required credentials: " + strings.Join(missing, ", "))
	}

	m := &AuthManager{
		creds:            creds,
		store:            store,
		authURL:          DefaultAuthURL,
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	if store != nil {
		if record, ok := store.Load(); ok {
			if raw := record[AccessTokenCookie]; raw != "" {
				m.token = decodeToken(raw)
				logging.Debug("Restored cached session")
			}
		}
	}

	return m, nil
}

// Token returns the current bearer token, or "" when none is held
func (m *AuthManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Authenticated reports whether a token is currently held
func (m *AuthManager) Authenticated() bool {
	return m.Token() != ""
}

// AuthHeaders returns the Authorization and User-Agent headers, running the
// login handshake first when no token is held. Concurrent callers share one
// handshake. A caller whose ctx ends stops waiting, but the handshake keeps
// running for the others.
func (m *AuthManager) AuthHeaders(ctx context.Context) (http.Header, error) {
	if token := m.Token(); token != "" {
		return authHeaders(token), nil
	}

	ch := m.flight.DoChan(handshakeKey, func() (interface{}, error) {
		// A handshake that finished between our check and this flight
		// already produced a token.
		if token := m.Token(); token != "" {
			return token, nil
		}

		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.handshakeTimeout)
		defer cancel()
		return m.authenticate(hctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return authHeaders(res.Val.(string)), nil
	case <-ctx.Done():
		return nil, NewAuthenticationError("Authentication wait cancelled", ctx.Err())
	}
}

// Invalidate drops the current token and the cached cookies so the next
// AuthHeaders call logs in from scratch. Safe to call repeatedly and concurrently.
func (m *AuthManager) Invalidate() {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	m.clearStore()
	logging.Debug("Session invalidated")
}

// InvalidateToken drops the session only while stale is still the current
// token. Callers that were rejected with a token another caller has already
// replaced leave the fresh session alone and simply pick it up.
func (m *AuthManager) InvalidateToken(stale string) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	if stale == "" || m.token != stale {
		m.mu.Unlock()
		logging.Debug("Session already replaced, keeping current token")
		return
	}
	m.token = ""
	m.mu.Unlock()

	m.clearStore()
	logging.Debug("Session invalidated")
}

func (m *AuthManager) clearStore() {
	if m.store == nil {
		return
	}
	if err := m.store.Clear(); err != nil {
		logging.Warn("Failed to clear cookie cache", zap.Error(err))
	}
}

// Login discards any current session and performs a fresh handshake
func (m *AuthManager) Login(ctx context.Context) (http.Header, error) {
	m.Invalidate()
	return m.AuthHeaders(ctx)
}

func authHeaders(token string) http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+token)
	h.Set("User-Agent", UserAgent)
	return h
}

// decodeToken turns the access-token cookie value into the bearer token.
// The cookie is URL-encoded ("abc%7Cdef" -> "abc|def").
func decodeToken(raw string) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// authenticate runs the four-step handshake and publishes the new token
func (m *AuthManager) authenticate(ctx context.Context) (string, error) {
	logging.Info("Authenticating with Netatmo")

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return "", NewAuthenticationError(StageSessionCookie.String(), err)
	}

	client := &http.Client{
		Transport: m.httpClient.Transport,
		Timeout:   m.httpClient.Timeout,
		Jar:       jar,
		// postlogin answers with a redirect that carries the token cookie
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var (
		csrfToken string
		rawToken  string
	)

	err = m.runStage(StageSessionCookie, func() error {
		status, _, cookies, err := m.send(ctx, client, http.MethodGet, LoginPagePath, nil)
		if err != nil {
			return err
		}
		if !isSuccessOrRedirect(status) {
			return fmt.Errorf("unexpected status code: %d", status)
		}
		if len(cookies) == 0 && len(jar.Cookies(m.endpoint(LoginPagePath))) == 0 {
			return fmt.Errorf("login page did not set a session cookie")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	err = m.runStage(StageCSRFToken, func() error {
		status, body, _, err := m.send(ctx, client, http.MethodGet, CSRFPath, nil)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			return fmt.Errorf("unexpected status code: %d", status)
		}
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("invalid CSRF response: %w", err)
		}
		if payload.Token == "" {
			return fmt.Errorf("CSRF response has no token")
		}
		csrfToken = payload.Token
		return nil
	})
	if err != nil {
		return "", err
	}

	err = m.runStage(StageCredentials, func() error {
		form := url.Values{}
		form.Set("email", m.creds.Username)
		form.Set("password", m.creds.Password)
		form.Set("stay_logged", "on")
		form.Set("_token", csrfToken)
		if m.creds.Scope != "" {
			form.Set("scope", m.creds.Scope)
		}

		status, _, cookies, err := m.send(ctx, client, http.MethodPost, PostLoginPath, form)
		if err != nil {
			return err
		}
		if !isSuccessOrRedirect(status) {
			return fmt.Errorf("unexpected status code: %d", status)
		}
		for _, c := range cookies {
			if c.Name == AccessTokenCookie && c.Value != "" {
				rawToken = c.Value
			}
		}
		if rawToken == "" {
			for _, c := range jar.Cookies(m.endpoint(PostLoginPath)) {
				if c.Name == AccessTokenCookie && c.Value != "" {
					rawToken = c.Value
				}
			}
		}
		if rawToken == "" {
			return fmt.Errorf("login response did not set %s", AccessTokenCookie)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	err = m.runStage(StageFinalize, func() error {
		status, _, _, err := m.send(ctx, client, http.MethodGet, KeychainPath, nil)
		if err != nil {
			return err
		}
		if !isSuccessOrRedirect(status) {
			return fmt.Errorf("unexpected status code: %d", status)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	token := decodeToken(rawToken)

	m.storeMu.Lock()
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.persist(jar, rawToken)
	m.storeMu.Unlock()
	logging.Info("Authentication succeeded")

	return token, nil
}

// runStage wraps one handshake step with observer notifications and
// converts its failure into an authentication error carrying the stage name
func (m *AuthManager) runStage(stage HandshakeStage, fn func() error) error {
	if m.observer != nil {
		m.observer(stage, false, nil)
	}

	err := fn()
	logging.LogAuthStage(stage.Label(), err)

	if err != nil {
		err = NewAuthenticationError(stage.String(), err)
	}
	if m.observer != nil {
		m.observer(stage, true, err)
	}
	return err
}

// persist saves every cookie the handshake collected. A failed save only
// costs a login on the next run, so it is logged rather than returned.
func (m *AuthManager) persist(jar http.CookieJar, rawToken string) {
	if m.store == nil {
		return
	}

	record := make(cookiestore.Record)
	for _, path := range []string{LoginPagePath, CSRFPath, PostLoginPath, KeychainPath} {
		for _, c := range jar.Cookies(m.endpoint(path)) {
			record[c.Name] = c.Value
		}
	}
	record[AccessTokenCookie] = rawToken

	if err := m.store.Save(record); err != nil {
		logging.Warn("Failed to cache session cookies", zap.Error(err))
	}
}

func (m *AuthManager) endpoint(path string) *url.URL {
	u, err := url.Parse(m.authURL + path)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// send performs one handshake request and returns the status, body and
// the cookies set by the response
func (m *AuthManager) send(ctx context.Context, client *http.Client, method, path string, form url.Values) (int, []byte, []*http.Cookie, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, m.authURL+path, body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, nil, NewNetworkError(method+" "+path+" failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxHandshakeBody))
	if err != nil {
		return resp.StatusCode, nil, nil, NewNetworkError("failed to read response body", err)
	}

	return resp.StatusCode, data, resp.Cookies(), nil
}

func isSuccessOrRedirect(status int) bool {
	return status >= 200 && status < 400
}
