package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "securemvp.auth.v1.AuthGateway"

const (
	AuthGateway_Login_FullMethodName    = "/" + ServiceName + "/Login"
	AuthGateway_Register_FullMethodName = "/" + ServiceName + "/Register"
	AuthGateway_Ping_FullMethodName     = "/" + ServiceName + "/Ping"
)

// AuthGatewayClient is the client API of the auth gateway.
type AuthGatewayClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type authGatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthGatewayClient(cc grpc.ClientConnInterface) AuthGatewayClient {
	return &authGatewayClient{cc}
}

func (c *authGatewayClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AuthGateway_Login_FullMethodName, in.ToStruct(), out, opts...); err != nil {
		return nil, err
	}
	return decodeReply(LoginResponseFromStruct(out))
}

func (c *authGatewayClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AuthGateway_Register_FullMethodName, in.ToStruct(), out, opts...); err != nil {
		return nil, err
	}
	return decodeReply(RegisterResponseFromStruct(out))
}

func (c *authGatewayClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AuthGateway_Ping_FullMethodName, in.ToStruct(), out, opts...); err != nil {
		return nil, err
	}
	return decodeReply(PingResponseFromStruct(out))
}

// decodeReply turns a malformed reply into a status error so the client
// error mapping treats it like any other rpc failure.
func decodeReply[T any](m *T, err error) (*T, error) {
	if err != nil {
		return nil, status.Errorf(codes.Internal, "malformed reply: %v", err)
	}
	return m, nil
}

// AuthGatewayServer is the server API of the auth gateway.
type AuthGatewayServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedAuthGatewayServer can be embedded to get Unimplemented
// answers for methods a server does not provide.
type UnimplementedAuthGatewayServer struct{}

func (UnimplementedAuthGatewayServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAuthGatewayServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedAuthGatewayServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterAuthGatewayServer(s grpc.ServiceRegistrar, srv AuthGatewayServer) {
	s.RegisterService(&AuthGateway_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to a grpc.MethodHandler. Interceptors
// see the typed request; the reply is encoded back into a Struct.
func unaryHandler[Req any, Resp interface{ ToStruct() *structpb.Struct }](
	fullMethod string,
	decode func(*structpb.Struct) (*Req, error),
	call func(AuthGatewayServer, context.Context, *Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		req, err := decode(in)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
		}
		handler := func(ctx context.Context, req any) (any, error) {
			resp, err := call(srv.(AuthGatewayServer), ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			return resp.ToStruct(), nil
		}
		if interceptor == nil {
			return handler(ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, req, info, handler)
	}
}

// AuthGateway_ServiceDesc is the grpc.ServiceDesc for the AuthGateway service.
var AuthGateway_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Login",
			Handler: unaryHandler(AuthGateway_Login_FullMethodName, LoginRequestFromStruct,
				AuthGatewayServer.Login),
		},
		{
			MethodName: "Register",
			Handler: unaryHandler(AuthGateway_Register_FullMethodName, RegisterRequestFromStruct,
				AuthGatewayServer.Register),
		},
		{
			MethodName: "Ping",
			Handler: unaryHandler(AuthGateway_Ping_FullMethodName, PingRequestFromStruct,
				AuthGatewayServer.Ping),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securemvp/auth/v1/gateway.proto",
}
