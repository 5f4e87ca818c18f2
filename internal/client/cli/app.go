package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/client/client"
	"github.com/flklr-dev/SecureMVPLab/internal/client/config"
	"github.com/flklr-dev/SecureMVPLab/internal/client/keystore"
	"github.com/flklr-dev/SecureMVPLab/internal/client/services"
	"github.com/flklr-dev/SecureMVPLab/internal/client/store"
	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"github.com/flklr-dev/SecureMVPLab/internal/cryptox"
	"github.com/flklr-dev/SecureMVPLab/internal/logging"
	"github.com/flklr-dev/SecureMVPLab/internal/validation"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	// ModeLocal means no gateway is configured.
	ModeLocal Mode = "local"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp wires the device key, the credential store, the optional gateway
// client and the auth service described by c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	scheme, err := validation.ParseScheme(c.IdentityScheme)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	key, created, err := keystore.LoadOrCreate(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("error loading device key: %w", err)
	}
	defer common.WipeByteArray(key)
	if created {
		logger.Info(ctx, "device key created", "path", c.KeyFile)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	st, err := store.New(db, key, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var gateway client.Gateway
	mode := ModeLocal
	if c.ServerEndpointAddr != "" {
		gc, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RemoteTimeout)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		gateway = gc
		mode = ModeOffline
	}

	as, err := services.NewAuthService(st, cryptox.NewDefaultHasher(), validation.NewValidator(scheme), gateway,
		services.Options{
			AllowOfflineRegistrationFallback: c.AllowOfflineRegistrationFallback,
			LoginMinPasswordLength:           c.LoginMinPasswordLength,
			OnStateChange: func(from, to services.State) {
				logger.Debug(ctx, "auth state", "from", from.String(), "to", to.String())
			},
		}, logger)
	if err != nil {
		if gateway != nil {
			_ = gateway.Close()
		}
		_ = st.Close()
		return nil, err
	}

	a := newApp(c, as, os.Stdin, os.Stdout, logger)
	a.mode = mode
	return a, nil
}

func newApp(c *config.Config, as services.AuthService, in io.Reader, out io.Writer, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		config:      c,
		authService: as,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         out,
		mode:        ModeLocal,
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.authService.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error(ctx, "error closing auth service", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.authService.Session().Identity() != ""
}

// StartOnlineStatusWatcher pings the gateway every interval and flips the
// mode between online and offline until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.probe(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.authService.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
