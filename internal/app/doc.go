// Package app is the composition root of companion.
//
// # Overview
//
// This package wires configuration, logging, the persistent cookie jar, the
// API client, the query cache and the session store, then hands them to the
// dashboard or to one of the account subcommands.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │ Build the environment
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      TOML + COMPANION_* env + .env
//	       ├─────> logging.Setup()    JSON log file (discard on failure)
//	       ├─────> jar.Open()         bbolt-backed cookie jar
//	       ├─────> api.NewClient()    REST client carrying the jar
//	       ├─────> query.New()        Shared query cache
//	       ├─────> session.New()      Session store (jar session cookie)
//	       └─────> prefs.Load()       Theme and default tab
//
//	Run() ──> Open() ──> ui.Run()    Dashboard (blocks)
//
// # Account Commands
//
// Login, AcceptToken, Logout and WhoAmI drive the same session store the
// dashboard uses, so a session started from the command line is picked up
// by the next dashboard run through the cookie jar.
//
// # Error Handling
//
// Fatal errors (returned from Open or Run):
//   - Malformed configuration file
//   - Cookie database cannot be opened (for example another process holds it)
//   - Invalid API base URL
//
// Recoverable errors:
//   - Log file cannot be opened: logging is discarded
//   - Preferences cannot be read: defaults are used
//   - Server logout fails: local credentials are still cleared
package app
