// Package jar provides the persistent cookie jar that carries the backend
// session between runs.
//
// # Storage
//
// Cookies live in cookies.db (bbolt) under the data directory, in one
// bucket keyed by origin:
//
//	cookies/
//	  "http://localhost:3000/" -> [{"name":"connect.sid","value":"…"}]
//
// An in-memory net/http/cookiejar sits in front of the database and decides
// which cookies a request receives. Every SetCookies call is written through
// to disk; Open replays the stored cookies into memory.
//
// # Expiry and Deletion
//
// A cookie set with a negative Max-Age or a past expiry removes the stored
// copy. Expired cookies are skipped on replay. Clear forgets everything in
// memory and on disk; logout uses it through SessionCookie.
//
// # Locking
//
// bbolt holds an exclusive file lock, so a second process opening the same
// data directory waits one second and then fails rather than sharing the
// file.
package jar
