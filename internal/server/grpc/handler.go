package grpc

import (
	"context"
	"errors"

	"github.com/flklr-dev/SecureMVPLab/internal/autherr"
	pb "github.com/flklr-dev/SecureMVPLab/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.users.Register(ctx, req.Identity, []byte(req.Password))
	if err != nil {
		if reason, msg, ok := rejection(err); ok {
			return &pb.RegisterResponse{Success: false, Message: msg, Reason: reason}, nil
		}
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &pb.RegisterResponse{Success: true, Message: "Account created"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {

	res, err := s.users.Login(ctx, req.Identity, []byte(req.Password))
	if err != nil {
		if reason, msg, ok := rejection(err); ok {
			return &pb.LoginResponse{Success: false, Message: msg, Reason: reason}, nil
		}
		s.logger.Error(ctx, "login failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &pb.LoginResponse{
		Success:     true,
		Message:     "Login successful",
		Identity:    res.Identity,
		AccessToken: res.AccessToken,
	}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	subject, _ := subjectFromContext(ctx)
	return &pb.PingResponse{Status: pb.StatusOK, Subject: subject}, nil
}

// rejection maps an answer for the caller to its wire reason. ok is false
// for internal failures.
func rejection(err error) (reason, message string, ok bool) {
	switch autherr.KindOf(err) {
	case autherr.KindInvalidInput:
		reason = pb.ReasonInvalidInput
	case autherr.KindAlreadyExists:
		reason = pb.ReasonAlreadyExists
	case autherr.KindAccountNotFound:
		reason = pb.ReasonAccountNotFound
	case autherr.KindInvalidCredentials, autherr.KindIncorrectPassword:
		reason = pb.ReasonInvalidCredentials
	default:
		return "", "", false
	}

	var ae *autherr.Error
	if errors.As(err, &ae) {
		message = ae.Message
	}
	return reason, message, true
}
