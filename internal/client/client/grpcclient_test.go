package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
	pb "github.com/flklr-dev/SecureMVPLab/internal/proto"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

/*************
 * Fake pb client
 *************/

type fakePB struct {
	// inputs captured
	lastPingReq     *pb.PingRequest
	lastLoginReq    *pb.LoginRequest
	lastRegisterReq *pb.RegisterRequest
	lastDeadline    time.Time

	// outputs preset
	pingResp *pb.PingResponse
	pingErr  error

	loginResp *pb.LoginResponse
	loginErr  error

	registerResp *pb.RegisterResponse
	registerErr  error
}

func (f *fakePB) Ping(ctx context.Context, in *pb.PingRequest, opts ...grpc.CallOption) (*pb.PingResponse, error) {
	f.lastPingReq = in
	f.lastDeadline, _ = ctx.Deadline()
	return f.pingResp, f.pingErr
}
func (f *fakePB) Login(ctx context.Context, in *pb.LoginRequest, opts ...grpc.CallOption) (*pb.LoginResponse, error) {
	f.lastLoginReq = in
	f.lastDeadline, _ = ctx.Deadline()
	return f.loginResp, f.loginErr
}
func (f *fakePB) Register(ctx context.Context, in *pb.RegisterRequest, opts ...grpc.CallOption) (*pb.RegisterResponse, error) {
	f.lastRegisterReq = in
	f.lastDeadline, _ = ctx.Deadline()
	return f.registerResp, f.registerErr
}

func newTestClient(f *fakePB) *GRPCClient {
	return &GRPCClient{client: f, timeout: time.Second}
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_AttachesToken(t *testing.T) {
	c := &GRPCClient{accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Equal(t, []string{"A1"}, toks)
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale")
	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AccessTokenHeaderName))
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.ErrorIs(t, c.mapError(status.Error(codes.Canceled, "x")), context.Canceled)
	e := errors.New("plain")
	require.ErrorContains(t, c.mapError(e), "rpc error:")
	require.NoError(t, c.mapError(nil))
}

func TestMapError_IgnoresMessageText(t *testing.T) {
	c := &GRPCClient{}
	err := c.mapError(status.Error(codes.Internal, "Network unreachable"))
	require.NotErrorIs(t, err, ErrUnavailable)
}

/*************
 * Ping tests
 *************/

func TestPing_OK(t *testing.T) {
	f := &fakePB{pingResp: &pb.PingResponse{Status: pb.StatusOK}}
	c := newTestClient(f)
	require.NoError(t, c.Ping(context.Background()))
	require.NotNil(t, f.lastPingReq)
	require.False(t, f.lastDeadline.IsZero(), "calls must carry a deadline")
}

func TestPing_NotOK_ReturnsUnavailable(t *testing.T) {
	f := &fakePB{pingResp: &pb.PingResponse{Status: "NOT_OK"}}
	c := newTestClient(f)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestPing_MapsRPCError(t *testing.T) {
	f := &fakePB{pingErr: status.Error(codes.Unavailable, "down")}
	c := newTestClient(f)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

/*************
 * Login / Register tests
 *************/

func TestLogin_SuccessStoresToken(t *testing.T) {
	f := &fakePB{loginResp: &pb.LoginResponse{Success: true, Identity: "user@x.com", AccessToken: "A"}}
	c := newTestClient(f)

	res, err := c.Login(context.Background(), "user@x.com", []byte("Abc12345!"))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "user@x.com", res.Identity)
	require.Equal(t, "A", c.AccessToken())
	require.Equal(t, "user@x.com", f.lastLoginReq.Identity)
	require.Equal(t, "Abc12345!", f.lastLoginReq.Password)
}

func TestLogin_RejectionIsAResult(t *testing.T) {
	f := &fakePB{loginResp: &pb.LoginResponse{Success: false, Message: "no such user", Reason: pb.ReasonAccountNotFound}}
	c := newTestClient(f)

	res, err := c.Login(context.Background(), "u@x.com", []byte("p"))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, ReasonAccountNotFound, res.Reason)
	require.Equal(t, "no such user", res.Message)
	require.Empty(t, c.AccessToken())
}

func TestLogin_MapsError(t *testing.T) {
	f := &fakePB{loginErr: status.Error(codes.Unavailable, "x")}
	c := newTestClient(f)
	_, err := c.Login(context.Background(), "u", []byte("p"))
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRegister_Result(t *testing.T) {
	f := &fakePB{registerResp: &pb.RegisterResponse{Success: false, Message: "taken", Reason: pb.ReasonAlreadyExists}}
	c := newTestClient(f)

	res, err := c.Register(context.Background(), "u@x.com", []byte("Abc12345!"))
	require.NoError(t, err)
	require.Equal(t, &RegisterResult{Success: false, Message: "taken", Reason: ReasonAlreadyExists}, res)
	require.Equal(t, "u@x.com", f.lastRegisterReq.Identity)
}

func TestRegister_MapsError(t *testing.T) {
	f := &fakePB{registerErr: status.Error(codes.PermissionDenied, "no")}
	c := newTestClient(f)
	_, err := c.Register(context.Background(), "u", []byte{1})
	require.ErrorIs(t, err, ErrUnauthorized)
}

/*************
 * bufconn round trip
 *************/

type tokenEchoServer struct {
	pb.UnimplementedAuthGatewayServer
}

func (tokenEchoServer) Login(ctx context.Context, in *pb.LoginRequest) (*pb.LoginResponse, error) {
	return &pb.LoginResponse{Success: true, Identity: in.Identity, AccessToken: "issued"}, nil
}

func (tokenEchoServer) Ping(ctx context.Context, _ *pb.PingRequest) (*pb.PingResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	toks := md.Get(common.AccessTokenHeaderName)
	sub := ""
	if len(toks) == 1 {
		sub = toks[0]
	}
	return &pb.PingResponse{Status: pb.StatusOK, Subject: sub}, nil
}

func TestGRPCClient_BufconnSendsTokenAfterLogin(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	var seen string
	s.RegisterService(&pb.AuthGateway_ServiceDesc, tokenEchoServer{})
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c := &GRPCClient{endpointURL: "passthrough:///bufnet", timeout: time.Second}
	require.NoError(t, c.initGRPCClient(
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithChainUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			md, _ := metadata.FromOutgoingContext(ctx)
			if v := md.Get(common.AccessTokenHeaderName); len(v) == 1 {
				seen = v[0]
			}
			return invoker(ctx, method, req, reply, cc, opts...)
		}),
	))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(context.Background()))
	require.Empty(t, seen)

	_, err := c.Login(context.Background(), "user@x.com", []byte("Abc12345!"))
	require.NoError(t, err)

	require.NoError(t, c.Ping(context.Background()))
	require.Equal(t, "issued", seen)
}

func TestClose_NilConn(t *testing.T) {
	require.NoError(t, (&GRPCClient{}).Close())
}
