// Package config loads gifbox settings.
//
// # Precedence
//
// Values are layered, later layers winning:
//
//  1. DefaultConfig
//  2. ~/.config/gifbox/config.toml (or --config); a missing file is fine
//  3. GIFBOX_* environment variables
//  4. Command-line flags that were set explicitly
//
// Flags are bound directly to the base Config, and the changed-flag map keeps
// the file and environment layers from overwriting them.
//
// # TOML Format
//
//	api_key = "..."
//	rating = "pg"
//	page_size = 25
//	favorites_path = "~/.local/share/gifbox/favorites.toml"
//	log_file = "~/.local/state/gifbox/gifbox.log"  # "-" for stderr
//	log_level = "info"
//	refresh_every = "5m"                            # "0" disables
//	resubscribe = "backoff"                         # or "never"
//
// # Environment
//
// GIFBOX_API_KEY, GIFBOX_API_URL, GIFBOX_RATING, GIFBOX_LOG_LEVEL,
// GIFBOX_FAVORITES, GIFBOX_PAGE_SIZE and GIFBOX_REFRESH_EVERY.
//
// Validate must be called after loading. It rejects a missing API key, an
// unknown rating, resubscribe policy or log level, and a page size outside
// 1..50, and expands ~ in paths.
package config
