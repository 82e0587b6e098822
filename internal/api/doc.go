// Package api implements the HTTP client for the companion backend.
//
// # Overview
//
// Every remote operation has one method on Client. Requests and responses
// use explicit types; responses are validated before they reach callers, so
// a malformed payload fails at the boundary instead of deep inside a view.
// The Backend interface lists the same operations and lets the cache, the
// session store and the views run against fakes in tests.
//
// # Endpoints
//
// Paths are resolved against the configured base URL:
//
//	GET    video              FetchVideo
//	PATCH  video/update       UpdateVideo (only fields that changed)
//	GET    video/rating       FetchRating
//	POST   video/rate         RateVideo
//	GET    comments           FetchComments
//	POST   comments           AddComment
//	POST   comments/reply     ReplyToComment
//	DELETE comments/{id}      DeleteComment (comments and replies)
//	GET    notes/{videoId}    FetchNotes
//	POST   notes              AddNote
//	PATCH  notes/{id}         UpdateNote
//	DELETE notes/{id}         DeleteNote
//	GET    auth/user          CurrentUser (401 means nobody is signed in)
//	GET    auth/logout        Logout
//	       auth/google        LoginURL builds it; the browser visits it
//
// # Request Handling
//
// All requests:
//   - carry Accept: application/json, a User-Agent and a fresh X-Request-ID
//   - send Content-Type: application/json when they have a body
//   - are bounded by the client timeout (30s by default)
//   - send the session cookie from the configured jar
//
// GET requests are repeated once when the transport fails before any
// response arrives. HTTP error statuses are answers, not failures, and are
// never retried; neither are writes.
//
// # Errors
//
//   - *HTTPError: non-2xx status; Message comes from a JSON message or
//     error field, falling back to the status text
//   - *TimeoutError: the client timeout elapsed
//   - *NetworkError: connection refused, DNS failure and similar
//   - context errors: the caller cancelled; never reported as a timeout
//
// IsTimeout, IsNetwork and IsStatus classify wrapped errors.
//
// # Schemas
//
// IDs and counts arrive as strings or numbers depending on the endpoint and
// are normalised by ID and Count. Ratings outside like, dislike and none
// are rejected. Validate checks required fields on every decoded value.
package api
