package grpc

import (
	"context"
	"net"

	"github.com/flklr-dev/SecureMVPLab/internal/logging"
	pb "github.com/flklr-dev/SecureMVPLab/internal/proto"
	"github.com/flklr-dev/SecureMVPLab/internal/server/models"
	"github.com/flklr-dev/SecureMVPLab/internal/server/observability"
	"github.com/flklr-dev/SecureMVPLab/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the part of services.UserService the gateway calls.
type UserService interface {
	Register(ctx context.Context, identity string, password []byte) (*models.User, error)
	Login(ctx context.Context, identity string, password []byte) (*services.LoginResult, error)
	Subject(accessToken string) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthGatewayServer
	address string
	users   UserService
	metrics *observability.Metrics
	logger  logging.Logger
}

// NewGRPCServer builds the gateway server. metrics may be nil.
func NewGRPCServer(a string, l logging.Logger, us UserService, m *observability.Metrics) (*GRPCServer, error) {
	if l == nil {
		l = logging.Nop()
	}
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		metrics: m,
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))

	pb.RegisterAuthGatewayServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
