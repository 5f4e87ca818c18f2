// Package config loads runtime configuration for the SecureMVP client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the auth gateway (empty: local only)
//	-d string   path of the credential database
//	-k string   path of the device key file
//	-s string   identity scheme: email or username
//	-f          allow offline registration fallback
//	-i int      online status check interval (seconds)
//	-t int      remote call timeout (seconds)
//	-m int      minimum login password length
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds. Absent keys keep their default:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "securemvp.db",
//	  "key_file": "securemvp.key",
//	  "identity_scheme": "email",
//	  "allow_offline_registration_fallback": false,
//	  "online_check_interval": "3s",
//	  "remote_timeout": "10s",
//	  "login_min_password_length": 1,
//	  "log_level": "info"
//	}
package config
