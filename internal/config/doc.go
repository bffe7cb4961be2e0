// Package config handles configuration loading for doorman.
//
// # Overview
//
// Configuration is loaded from a TOML file with environment variable
// expansion, then overlaid with WB_* environment variables. The bot can run
// with no config file at all when the required values come from the
// environment.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from DOORMAN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/doorman/doorman.toml
//  3. ~/.config/doorman/doorman.toml
//
// # Sections
//
//	[bot]
//	name = "doorman"          # display name used in welcome messages
//	group_name = "My Group"   # required invite target
//	action_delay = "3s"       # pause before friendship accept/welcome steps
//
//	[console]
//	disabled = false          # stdin console and terminal QR output
//
//	[http]
//	enabled = false           # operator endpoint with SSE event stream
//	port = 3000
//
//	[matrix]
//	homeserver = "https://matrix.org"
//	user_id = "@doorman:matrix.org"
//	access_token = "${DOORMAN_ACCESS_TOKEN}"
//
//	[logging]
//	level = "info"            # debug, info, warn, error
//
// # Environment Overrides
//
// The WB_* variables take precedence over file values:
//
//	WB_WHO_AM_I            bot.name
//	WB_TARGET_GROUP_NAME   bot.group_name (required if not in file)
//	WB_DISABLE_CONSOLE     console.disabled
//	WB_ENABLE_HTTP         http.enabled
//	WB_HTTP_PORT           http.port
//
// # Validation
//
// Load fails when bot.group_name is missing or the HTTP port is out of
// range. Startup configuration errors are the only fatal errors doorman
// raises.
package config
