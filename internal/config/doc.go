// Package config loads runtime configuration for the kbloader CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-p string   environment profiles file (JSON/JSONC or YAML)
//	-e string   active environment profile ("test" or "prod")
//	-u string   user id sent as X-User-ID
//	-r string   parent folder id in the knowledge base
//	-t int      per-phase network timeout (seconds)
//	-d string   upload history database (empty disables history)
//	-l string   log level: debug, info, warn, error
//	-s          show system files in listings
//
// # JSON schema
//
//	{
//	  "profiles_file": "config.json",
//	  "environment": "test",
//	  "user_id": "113776",
//	  "parent_id": "123662",
//	  "phase_timeout": "60s",
//	  "ledger_dsn": "kbloader.db",
//	  "log_level": "info",
//	  "show_noise": false
//	}
package config
