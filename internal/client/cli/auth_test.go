package cli

import (
	"context"
	"testing"

	"github.com/flklr-dev/SecureMVPLab/internal/autherr"
	"github.com/flklr-dev/SecureMVPLab/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLogoutLogin(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, nil, "User@X.com\nuser@x.com\n")
	stubPasswords(t, "Abc12345!", "Abc12345!", "Abc12345!")

	require.NoError(t, a.Register(ctx))
	assert.Contains(t, out.String(), "Account created, logged in as user@x.com")
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, a.getStatus(), "user@x.com")

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())

	require.NoError(t, a.Login(ctx))
	assert.Contains(t, out.String(), "Logged in as user@x.com")
	assert.Equal(t, ModeLocal, a.Mode())
}

func TestRegister_WeakPasswordShowsFeedback(t *testing.T) {
	a, out := newTestApp(t, nil, "user@x.com\n")
	stubPasswords(t, "abc", "abc")

	err := a.Register(context.Background())
	require.Error(t, err)
	assert.Equal(t, autherr.KindInvalidInput, autherr.KindOf(err))
	assert.Contains(t, out.String(), "  - Password must be at least 8 characters long")
	assert.Contains(t, out.String(), "  - Password must contain at least one digit")
}

func TestLogin_UnknownAccount(t *testing.T) {
	a, out := newTestApp(t, nil, "nouser@x.com\n")
	stubPasswords(t, "whatever1")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, autherr.ErrAccountNotFound)
	assert.Contains(t, out.String(), "No account found for this email")
	assert.False(t, a.isLoggedIn())
}

func TestLogin_RemoteSwitchesOnline(t *testing.T) {
	gw := &fakeGateway{}
	a, _ := newTestApp(t, gw, "remote@x.com\n")
	stubPasswords(t, "Abc12345!")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, ModeOnline, a.Mode())
}

func TestLogin_GatewayUnavailableSwitchesOffline(t *testing.T) {
	gw := &fakeGateway{loginErr: client.ErrUnavailable}
	a, out := newTestApp(t, gw, "remote@x.com\n")
	a.mode = ModeOnline
	stubPasswords(t, "Abc12345!")

	err := a.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, ModeOffline, a.Mode())
	assert.Contains(t, out.String(), "(you can try again)")
}

func TestLogin_PasswordReadError(t *testing.T) {
	a, _ := newTestApp(t, nil, "user@x.com\n")
	stubPasswords(t)

	require.Error(t, a.Login(context.Background()))
}

func TestStrength(t *testing.T) {
	a, out := newTestApp(t, nil, "")
	stubPasswords(t, "abc", "Abc12345!")

	require.NoError(t, a.Strength(context.Background()))
	assert.Contains(t, out.String(), "  - Password must contain at least one uppercase letter")

	out.Reset()
	require.NoError(t, a.Strength(context.Background()))
	assert.Contains(t, out.String(), "Password meets all requirements")
}

func TestStatus(t *testing.T) {
	a, out := newTestApp(t, nil, "")
	require.NoError(t, a.Status(context.Background()))
	assert.Equal(t, "identity: (not logged in)\nmode: local\nstate: Idle\n", out.String())
}

func TestDeleteAccountAndWipe(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, nil, "a@x.com\nb@x.com\na@x.com\nn\ny\n")
	stubPasswords(t, "Abc12345!", "Abc12345!", "Abc12345!", "Abc12345!", "Abc12345!")

	require.NoError(t, a.Register(ctx))
	require.NoError(t, a.Register(ctx))

	require.NoError(t, a.DeleteAccount(ctx))
	assert.Contains(t, out.String(), "Account deleted")

	require.NoError(t, a.Wipe(ctx))
	assert.Contains(t, out.String(), "Cancelled")
	assert.True(t, a.isLoggedIn())

	require.NoError(t, a.Wipe(ctx))
	assert.Contains(t, out.String(), "Local data removed")
	assert.False(t, a.isLoggedIn())
}

func TestRoot_RestoresSessionAndExits(t *testing.T) {
	capturePrintln(t)
	ctx := context.Background()
	a, out := newTestApp(t, nil, "user@x.com\nstatus\nexit\n")
	stubPasswords(t, "Abc12345!", "Abc12345!")

	require.NoError(t, a.Register(ctx))

	a.Root(ctx)
	assert.Contains(t, out.String(), "Restored session for user@x.com")
	assert.Contains(t, out.String(), "identity: user@x.com")
}
