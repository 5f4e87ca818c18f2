package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/client/client"
	"github.com/flklr-dev/SecureMVPLab/internal/client/config"
	"github.com/flklr-dev/SecureMVPLab/internal/client/services"
	"github.com/flklr-dev/SecureMVPLab/internal/client/store"
	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"github.com/flklr-dev/SecureMVPLab/internal/cryptox"
	"github.com/flklr-dev/SecureMVPLab/internal/logging"
	"github.com/flklr-dev/SecureMVPLab/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

type fakeGateway struct {
	mu       sync.Mutex
	loginRet *client.LoginResult
	loginErr error
	pingErr  error
	pings    atomic.Int32
}

func (f *fakeGateway) Login(_ context.Context, identity string, _ []byte) (*client.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginRet != nil {
		return f.loginRet, nil
	}
	return &client.LoginResult{Success: true, Identity: identity, AccessToken: "tok"}, nil
}

func (f *fakeGateway) Register(context.Context, string, []byte) (*client.RegisterResult, error) {
	return &client.RegisterResult{Success: true}, nil
}

func (f *fakeGateway) Ping(context.Context) error {
	f.pings.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeGateway) Close() error { return nil }

func (f *fakeGateway) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

func newTestApp(t *testing.T, gw client.Gateway, input string) (*App, *bytes.Buffer) {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	st, err := store.New(db, common.GenerateRandByteArray(cryptox.DeviceKeyLength), nil)
	require.NoError(t, err)

	svc, err := services.NewAuthService(st, cryptox.NewHasherForTest(), validation.NewValidator(validation.SchemeEmail),
		gw, services.Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	a := newApp(cfg, svc, strings.NewReader(input), &out, nil)
	if gw != nil {
		a.mode = ModeOffline
	}
	return a, &out
}

// stubPasswords makes readPassword return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := readPassword
	var mu sync.Mutex
	readPassword = func(int) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(pws) == 0 {
			return nil, errors.New("no more passwords")
		}
		pw := []byte(pws[0])
		pws = pws[1:]
		return pw, nil
	}
	t.Cleanup(func() { readPassword = orig })
}

// ---- mode ----

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(&config.Config{}, nil, strings.NewReader(""), &bytes.Buffer{}, logging.NewTextLogger(&buf, "info"))
	ctx := context.Background()

	app.setMode(ctx, ModeOnline)
	assert.Equal(t, ModeOnline, app.Mode())
	assert.Contains(t, buf.String(), "mode=online")

	buf.Reset()
	app.setMode(ctx, ModeOnline)
	assert.Empty(t, buf.String(), "no log output when mode doesn't change")

	app.setMode(ctx, ModeOffline)
	assert.Equal(t, ModeOffline, app.Mode())
	assert.Contains(t, buf.String(), "mode=offline")
}

func TestStartOnlineStatusWatcher_TogglesMode(t *testing.T) {
	gw := &fakeGateway{}
	gw.setPingErr(nil)
	a, _ := newTestApp(t, gw, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	gw.setPingErr(client.ErrUnavailable)
	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStartOnlineStatusWatcher_ZeroIntervalReturns(t *testing.T) {
	gw := &fakeGateway{}
	a, _ := newTestApp(t, gw, "")
	a.StartOnlineStatusWatcher(context.Background(), 0)
	assert.Zero(t, gw.pings.Load())
}

// ---- status line ----

func TestGetStatus(t *testing.T) {
	a, _ := newTestApp(t, nil, "")
	assert.Equal(t, "(local)", a.getStatus())

	a.mode = ""
	assert.Equal(t, "", a.getStatus())
}
