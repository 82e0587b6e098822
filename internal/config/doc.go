// Package config loads companion's configuration.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//  1. Built-in defaults
//  2. The TOML file (~/.config/companion/config.toml unless --config is given)
//  3. A .env file in the working directory (never overrides the real environment)
//  4. COMPANION_* environment variables, with '.' in keys mapped to '_'
//     (COMPANION_LOG_LEVEL sets log.level)
//
// A missing config file is not an error. A malformed one is.
//
// # Keys
//
//	api_url = "http://localhost:3000"
//	request_timeout = "30s"
//	session_cookie = "connect.sid"
//	callback_port = 8765
//	data_dir = "~/.local/share/companion"
//
//	[log]
//	file = "~/.local/share/companion/companion.log"
//	level = "info"
//
// Paths starting with '~' are expanded to the home directory. log.file
// defaults to companion.log inside data_dir.
package config
