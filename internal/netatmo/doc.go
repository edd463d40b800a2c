// Package netatmo provides an authenticated client for the Netatmo web API.
//
// Netatmo's thermostat calibration endpoint is only reachable with a session
// obtained through the web login flow, not through the public OAuth API. This
// package performs that flow, keeps the resulting bearer token, and wraps the
// JSON API behind a small request executor.
//
// # Login Handshake
//
// AuthManager performs a four-step handshake against auth.netatmo.com:
//  1. GET /en-us/access/login to open a session cookie
//  2. GET /access/csrf to obtain a CSRF token bound to that session
//  3. POST /access/postlogin with the credentials and CSRF token; the redirect
//     response sets the netatmocomaccess_token cookie
//  4. GET /access/keychain to finalize the login
//
// The URL-decoded access-token cookie is the bearer token. All cookies are
// cached on disk (see package cookiestore) and a cached token is trusted until
// the API rejects it.
//
// # Usage Example
//
//	store := cookiestore.New("/home/me/.config/truetemp/cookies.json")
//	auth, err := netatmo.NewAuthManager(netatmo.Credentials{
//	    Username: "me@example.com",
//	    Password: "secret",
//	}, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := netatmo.NewClient(auth, netatmo.WithTimeout(5*time.Second))
//	resp, err := client.Get(ctx, netatmo.HomesDataPath, nil)
//
// # Retry Policy
//
// Client.Do never retries network failures. A 403 with any body is treated as
// a stale session: the session is invalidated, fresh headers are obtained
// (running a new handshake) and the request is sent exactly once more. A 403
// with an empty body and every other non-2xx status fail immediately.
//
// # Thread Safety
//
// AuthManager and Client are safe for concurrent use. Concurrent callers that
// find no token share a single handshake (golang.org/x/sync/singleflight);
// callers that find a token only take a read lock.
//
// # Error Handling
//
// Every failure is an *Error whose Kind identifies the category. Use the
// Is*Error helpers, which see through wrapping, rather than comparing types.
package netatmo
