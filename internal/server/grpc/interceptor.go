package grpc

import (
	"context"

	"github.com/dmitrijs2005/userauth/internal/authrpc"
	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// protectedMethods require a valid bearer token.
var protectedMethods = map[string]struct{}{
	authrpc.AuthService_Me_FullMethodName:            {},
	authrpc.AuthService_ResetPassword_FullMethodName: {},
}

// accessTokenInterceptor authenticates calls to protected methods and puts
// the claims into the handler's context. Rejected calls never reach the
// handler and fail with codes.Unauthenticated.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protectedMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	token, ok := tokenFromMetadata(ctx)
	if !ok {
		return nil, toStatus(common.ErrUnauthorized)
	}

	claims, err := s.users.Authenticate(ctx, token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "method", info.FullMethod, "error", err)
		return nil, toStatus(err)
	}

	return handler(auth.WithClaims(ctx, claims), req)
}

func tokenFromMetadata(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return "", false
	}
	return common.BearerToken(values[0])
}
