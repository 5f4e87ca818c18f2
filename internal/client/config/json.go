package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/flagx"
	"github.com/flklr-dev/SecureMVPLab/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish an absent key from a zero value.
type JsonConfig struct {
	ServerEndpointAddr               *string         `json:"server_endpoint_addr"`
	DatabasePath                     *string         `json:"database_path"`
	KeyFile                          *string         `json:"key_file"`
	IdentityScheme                   *string         `json:"identity_scheme"`
	AllowOfflineRegistrationFallback *bool           `json:"allow_offline_registration_fallback"`
	OnlineCheckInterval              *timex.Duration `json:"online_check_interval"`
	RemoteTimeout                    *timex.Duration `json:"remote_timeout"`
	LoginMinPasswordLength           *int            `json:"login_min_password_length"`
	LogLevel                         *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without one it does nothing. Read or unmarshal errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.KeyFile, jc.KeyFile)
	setString(&cfg.IdentityScheme, jc.IdentityScheme)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.AllowOfflineRegistrationFallback != nil {
		cfg.AllowOfflineRegistrationFallback = *jc.AllowOfflineRegistrationFallback
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.RemoteTimeout != nil {
		cfg.RemoteTimeout = time.Duration(jc.RemoteTimeout.Duration)
	}
	if jc.LoginMinPasswordLength != nil {
		cfg.LoginMinPasswordLength = *jc.LoginMinPasswordLength
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
