package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"github.com/flklr-dev/SecureMVPLab/internal/cryptox"
	pb "github.com/flklr-dev/SecureMVPLab/internal/proto"
	"github.com/flklr-dev/SecureMVPLab/internal/server/config"
	"github.com/flklr-dev/SecureMVPLab/internal/server/observability"
	"github.com/flklr-dev/SecureMVPLab/internal/server/repositories/repomanager"
	"github.com/flklr-dev/SecureMVPLab/internal/server/services"
	"github.com/flklr-dev/SecureMVPLab/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

// startGateway serves a gateway backed by the in-memory repository over
// bufconn and returns a connected client.
func startGateway(t *testing.T) (pb.AuthGatewayClient, *observability.Metrics) {
	t.Helper()

	cfg := &config.Config{SecretKey: "secret", AccessTokenValidityDuration: time.Hour}
	us, err := services.NewUserService(nil, repomanager.NewInMemoryRepositoryManager(),
		cryptox.NewHasherForTest(), validation.NewValidator(validation.SchemeEmail), cfg, nil)
	require.NoError(t, err)

	m := observability.NewMetrics(prometheus.NewRegistry())
	srv, err := NewGRPCServer("", nil, us, m)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("gateway did not stop")
		}
	})

	return pb.NewAuthGatewayClient(conn), m
}

func TestGateway_RegisterLoginPing(t *testing.T) {
	c, m := startGateway(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, &pb.RegisterRequest{Identity: "Alice@X.com", Password: "Abc12345!"})
	require.NoError(t, err)
	require.True(t, reg.Success, reg.Message)

	login, err := c.Login(ctx, &pb.LoginRequest{Identity: "alice@x.com", Password: "Abc12345!"})
	require.NoError(t, err)
	require.True(t, login.Success, login.Message)
	assert.Equal(t, "alice@x.com", login.Identity)
	require.NotEmpty(t, login.AccessToken)

	ping, err := c.Ping(ctx, &pb.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusOK, ping.Status)
	assert.Empty(t, ping.Subject)

	authed := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, login.AccessToken)
	ping, err = c.Ping(authed, &pb.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", ping.Subject)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("Register", observability.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("Login", observability.ResultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("Ping", observability.ResultOK)))
}

func TestGateway_Rejections(t *testing.T) {
	c, m := startGateway(t)
	ctx := context.Background()

	_, err := c.Register(ctx, &pb.RegisterRequest{Identity: "a@x.com", Password: "Abc12345!"})
	require.NoError(t, err)

	reg, err := c.Register(ctx, &pb.RegisterRequest{Identity: "a@x.com", Password: "Abc12345!"})
	require.NoError(t, err)
	assert.False(t, reg.Success)
	assert.Equal(t, pb.ReasonAlreadyExists, reg.Reason)

	login, err := c.Login(ctx, &pb.LoginRequest{Identity: "a@x.com", Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, login.Success)
	assert.Equal(t, pb.ReasonInvalidCredentials, login.Reason)

	login, err = c.Login(ctx, &pb.LoginRequest{Identity: "nobody@x.com", Password: "Abc12345!"})
	require.NoError(t, err)
	assert.Equal(t, pb.ReasonAccountNotFound, login.Reason)

	reg, err = c.Register(ctx, &pb.RegisterRequest{Identity: "b@x.com", Password: "weak"})
	require.NoError(t, err)
	assert.Equal(t, pb.ReasonInvalidInput, reg.Reason)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("Register", observability.ResultRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("Login", observability.ResultRejected)))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:0", nil, &fakeUsers{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:99999", nil, &fakeUsers{}, nil)
	require.NoError(t, err)

	require.Error(t, srv.Run(context.Background()))
}
