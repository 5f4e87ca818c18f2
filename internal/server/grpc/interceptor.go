package grpc

import (
	"context"
	"path"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
	pb "github.com/flklr-dev/SecureMVPLab/internal/proto"
	"github.com/flklr-dev/SecureMVPLab/internal/server/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

type ctxKey string

const subjectKey ctxKey = "subject"

func subjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok
}

// accessTokenInterceptor attaches the subject of a valid access token to the
// context. Requests without a token, or with an invalid one, proceed
// anonymously: no gateway method requires authentication.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}

	if accessToken != "" {
		subject, err := s.users.Subject(accessToken)
		if err != nil {
			s.logger.Debug(ctx, "ignoring access token", "method", info.FullMethod, "error", err)
		} else {
			ctx = context.WithValue(ctx, subjectKey, subject)
		}
	}

	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	resp, err := handler(ctx, req)
	s.metrics.ObserveRequest(path.Base(info.FullMethod), resultOf(resp, err))
	return resp, err
}

// resultOf classifies a reply; handlers answer rejections with
// success=false rather than an error.
func resultOf(resp interface{}, err error) string {
	if err != nil {
		return observability.ResultError
	}
	if st, ok := resp.(*structpb.Struct); ok {
		if v, ok := st.GetFields()[pb.FieldSuccess]; ok && !v.GetBoolValue() {
			return observability.ResultRejected
		}
	}
	return observability.ResultOK
}
