package config

import "time"

// Config holds runtime settings for the SecureMVP terminal client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the auth gateway. Empty means
//     local-only mode.
//   - DatabasePath, KeyFile: location of the encrypted credential store and
//     of its device key.
//   - IdentityScheme: "email" or "username".
//   - AllowOfflineRegistrationFallback: register locally when the gateway is
//     unreachable.
//   - OnlineCheckInterval, RemoteTimeout: gateway probe period and per-call
//     timeout.
//   - LoginMinPasswordLength: shortest password accepted by login.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr               string
	DatabasePath                     string
	KeyFile                          string
	IdentityScheme                   string
	AllowOfflineRegistrationFallback bool
	OnlineCheckInterval              time.Duration
	RemoteTimeout                    time.Duration
	LoginMinPasswordLength           int
	LogLevel                         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = ""
	c.DatabasePath = "securemvp.db"
	c.KeyFile = "securemvp.key"
	c.IdentityScheme = "email"
	c.AllowOfflineRegistrationFallback = false
	c.OnlineCheckInterval = 3 * time.Second
	c.RemoteTimeout = 10 * time.Second
	c.LoginMinPasswordLength = 1
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
