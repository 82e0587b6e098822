// Package query provides the client-side cache that sits between the views
// and the API client.
//
// # Overview
//
// Every piece of server data the dashboard shows (the video, its rating, the
// comment thread, the notes for one video) lives in a Cache entry addressed
// by a Key. Views never talk to the API client directly for reads: they ask
// the cache, which either answers from memory or performs the fetch, shares
// it with anyone else asking for the same key, and records the outcome.
// Writes go through a Mutation, which tells the cache which keys the write
// made stale once the server has confirmed it.
//
// # Data Flow
//
//	 view ──Fetch(key, fn)──┐
//	                        ▼
//	               ┌──────────────────┐   fresh success   ┌──────────┐
//	               │   entry lookup   │──────────────────>│  Result  │
//	               └────────┬─────────┘                   └──────────┘
//	                        │ missing / stale / error
//	                        ▼
//	               ┌──────────────────┐
//	               │ singleflight.Do  │  one call per key, generation
//	               │  (retry once)    │  and version
//	               └────────┬─────────┘
//	                        ▼
//	               ┌──────────────────┐
//	               │  store outcome   │  skipped when Clear ran meanwhile
//	               └──────────────────┘
//
//	 view ──Mutate(vars)──> fn ──ok──> Invalidate(prefixes) ──> view refetches
//	                           └─err─> cache untouched
//
// # Keys
//
// A Key is an ordered list of strings such as Key{"notes", videoID}.
// HasPrefix compares element by element, so Key{"notes"} matches the notes
// of every video while Key{"note"} matches nothing. The empty key matches
// everything.
//
// # Entry Lifecycle
//
// An entry moves through four statuses:
//
//	idle ──Fetch──> loading ──ok──> success
//	                   │
//	                   └──err──> error
//
//   - idle: never fetched, disabled, or the only fetch was cancelled
//   - loading: a fetch is running and nothing is cached yet
//   - success: data is cached; Stale reports whether it has been invalidated
//   - error: the fetch failed after its retry; earlier data is kept
//
// An entry that already holds data is never put back into loading. A
// refetch of stale data keeps showing the old value until the new one
// arrives, so the views do not flicker.
//
// # De-duplication
//
// Concurrent Fetch calls for the same key share a single call through
// golang.org/x/sync/singleflight. The flight key combines the entry key,
// the cache generation and the entry version. A fetch that starts after an
// invalidation therefore never joins a flight that started before it and
// cannot receive data the server has since replaced.
//
// # Invalidation
//
// Invalidate(prefix) marks every matching entry stale, bumps its version and
// returns the keys it touched. The caller (normally a view reacting to a
// settled mutation) refetches those keys. When a fetch completes for an
// entry whose version moved while it was in flight, its data is stored but
// the entry stays stale, so the next Fetch goes back to the server.
//
// # Clear and Generations
//
// Clear drops every entry and increments the cache generation. Each Fetch
// remembers the generation it started under; if the generation changed by
// the time the call returns, the result is handed to the caller but not
// written back. Logout relies on this: a request that was already on the
// wire when the user signed out cannot repopulate the cache with the
// previous user's data.
//
// # Retries and Cancellation
//
// A failed fetch is repeated once (WithRetries changes the count) unless
// its context is done. A fetch whose context is cancelled leaves the entry
// idle, or in success when it already had data, and is never recorded as an
// error.
//
// Mutations are never retried. A write that failed is reported once, with
// the cache untouched, and it is up to the user to try again.
//
// # Mutations
//
// NewMutation binds a write function and an invalidation rule to a cache.
// Every Mutate call emits two events to subscribers:
//
//	StagePending ──> StageSucceeded (Invalidated lists the stale keys)
//	             └─> StageFailed    (Err holds the server error)
//
// Invalidation happens strictly after the write function returned without
// error. Pending reports whether any call is still running, which the views
// use to disable their submit controls.
//
// # Scopes
//
// A Scope ties requests to the lifetime of one view. Its context is passed
// to Fetch and Mutate; Close cancels everything started under it. Messages
// carry the scope ID, and a view drops any message whose scope is not the
// one currently mounted. The zero (nil) scope is valid and never cancels.
//
// # Concurrency
//
// Cache methods are safe for concurrent use. The mutex guards only the
// entry map and is never held across a network call.
package query
