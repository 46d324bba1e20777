// Package config handles configuration loading for coven-chat.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. The format follows the file extension: .toml selects TOML,
// anything else YAML. Absent optional fields take the values from Default.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COVEN_CHAT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/coven/chat.yaml
//  3. ~/.config/coven/chat.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	web:
//	  tailscale:
//	    auth_key: "${TS_AUTHKEY}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Client identity (required):
//
//	client:
//	  id: 42
//
// Assistant endpoint:
//
//	assistant:
//	  url: "http://localhost:5000/api/assistant/chat"
//	  timeout: "60s"   # empty or "0s" waits indefinitely
//
// Web surface:
//
//	web:
//	  addr: "127.0.0.1:8090"
//	  tailscale:
//	    enabled: false
//	    hostname: "coven-chat"
//	    auth_key: "${TS_AUTHKEY}"
//	    ephemeral: true
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// The same file in TOML:
//
//	[client]
//	id = 42
//
//	[assistant]
//	url = "http://localhost:5000/api/assistant/chat"
//	timeout = "60s"
//
// # Usage
//
//	cfg, err := config.Load("/home/me/.config/coven/chat.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Read skips validation so that command-line overrides such as -client-id
// can be applied before calling Validate.
package config
