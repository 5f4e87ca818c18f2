package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	full := defaults()
	full.ServerEndpointAddr = "127.0.0.1:9090"
	full.DatabasePath = "/tmp/c.db"
	full.KeyFile = "/tmp/c.key"
	full.IdentityScheme = "username"
	full.AllowOfflineRegistrationFallback = true
	full.OnlineCheckInterval = 10 * time.Second
	full.RemoteTimeout = 2 * time.Second
	full.LoginMinPasswordLength = 6
	full.LogLevel = "debug"

	onlyFallback := defaults()
	onlyFallback.AllowOfflineRegistrationFallback = true
	onlyFallback.ServerEndpointAddr = "h:1"

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-d", "/tmp/c.db", "-k", "/tmp/c.key", "-s", "username",
				"-f", "-i", "10", "-t", "2", "-m", "6", "-l", "debug"},
			expected: full,
		},
		{name: "bool does not consume value", args: []string{"cmd", "-f", "-a", "h:1"}, expected: onlyFallback},
		{name: "unknown flags ignored", args: []string{"cmd", "-x", "1", "--verbose"}, expected: defaults()},
		{name: "incorrect check interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
		{name: "incorrect min length", args: []string{"cmd", "-m", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := defaults()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsSubSecondDurationsWithoutFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-t", "4"}

	config := defaults()
	config.OnlineCheckInterval = 500 * time.Millisecond
	parseFlags(config)

	assert.Equal(t, 500*time.Millisecond, config.OnlineCheckInterval)
	assert.Equal(t, 4*time.Second, config.RemoteTimeout)
}
