// Package session tracks who is signed in.
//
// # Overview
//
// One Store exists per process. It owns the current user and is the only
// thing that decides whether the dashboard may be shown. The store never
// holds a token itself: the session lives in a cookie, written through the
// Credentials interface (the persistent cookie jar in production) and sent
// by the API client on every request.
//
// # State Machine
//
//	             Init: user returned
//	┌─────────┐─────────────────────>┌───────────────┐
//	│ Unknown │                      │ Authenticated │
//	└────┬────┘                      └──┬─────────▲──┘
//	     │ no user / check error        │ Logout  │ AcceptToken
//	     ▼                              ▼         │ + Refresh
//	┌───────────┐<────────────────────────        │
//	│ Anonymous │─────────────────────────────────┘
//	└───────────┘
//
//   - Init enters Unknown with Loading set, checks GET auth/user and settles
//     in Authenticated or Anonymous. A failed check is logged and treated
//     as Anonymous; the user is asked to sign in rather than shown an error.
//   - Refresh checks again but keeps the current state, with Loading set,
//     until the check resolves.
//   - Logout always ends in Anonymous.
//
// # Login
//
// Signing in happens in the system browser:
//
//	ListenCallback(port) ──> Login(cb.URL()) ──> browser consent
//	                                                   │
//	      AcceptToken(token) <── Wait() <── GET /callback?session=<token>
//
// Login only opens the consent URL; the state does not change until a
// token is accepted. AcceptToken stores the token through Credentials and
// then runs Refresh, so a token the server does not recognise leaves the
// store Anonymous.
//
// The callback server binds 127.0.0.1 only and answers a single redirect.
// Requests that carry neither session nor error (a prefetch, a reload) get
// a 400 and do not end the wait. Close is idempotent and releases the port
// before it returns, so a new attempt can listen on the same port at once.
//
// # Logout
//
// Logout is fail-open:
//
//  1. call GET auth/logout
//  2. clear the query cache (whatever the server said)
//  3. clear the stored credentials
//  4. publish Anonymous
//  5. return the server error, if any, for reporting
//
// A user who asked to sign out is signed out locally even when the backend
// is unreachable.
//
// # Subscriptions
//
// Subscribe registers a callback for every transition and returns a
// function that removes it. Callbacks run on the goroutine that caused the
// transition, outside the store lock.
package session
