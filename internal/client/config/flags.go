package config

import (
	"flag"
	"os"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgsWithBools, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:],
		[]string{"-a", "-d", "-k", "-s", "-f", "-i", "-t", "-m", "-l"},
		[]string{"-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the auth gateway")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "credential database path")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "device key file path")
	fs.StringVar(&cfg.IdentityScheme, "s", cfg.IdentityScheme, "identity scheme (email|username)")
	fs.BoolVar(&cfg.AllowOfflineRegistrationFallback, "f", cfg.AllowOfflineRegistrationFallback, "register locally when the gateway is unreachable")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	remoteTimeout := fs.Int("t", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	fs.IntVar(&cfg.LoginMinPasswordLength, "m", cfg.LoginMinPasswordLength, "minimum login password length")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// duration flags are whole seconds; JSON values stay unless overridden
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "t":
			cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
		}
	})
}
