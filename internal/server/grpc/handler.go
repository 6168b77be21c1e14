package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/userauth/internal/authrpc"
	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *authrpc.RegisterRequest) (*authrpc.RegisterResponse, error) {
	u, err := s.users.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		s.logFailure(ctx, "register", err)
		return nil, toStatus(err)
	}

	return &authrpc.RegisterResponse{User: authrpc.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authrpc.LoginRequest) (*authrpc.LoginResponse, error) {
	sess, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logFailure(ctx, "login", err)
		return nil, toStatus(err)
	}
	return &authrpc.LoginResponse{Session: toSession(sess)}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *authrpc.MeRequest) (*authrpc.MeResponse, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, toStatus(common.ErrUnauthorized)
	}
	return &authrpc.MeResponse{User: toIdentity(claims), ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *authrpc.ResetPasswordRequest) (*authrpc.ResetPasswordResponse, error) {
	token, _ := tokenFromMetadata(ctx)

	sess, err := s.users.ResetPassword(ctx, token, req.Email, req.Password)
	if err != nil {
		s.logFailure(ctx, "reset password", err)
		return nil, toStatus(err)
	}
	return &authrpc.ResetPasswordResponse{Session: toSession(sess)}, nil
}

func (s *GRPCServer) Ping(context.Context, *authrpc.PingRequest) (*authrpc.PingResponse, error) {
	return &authrpc.PingResponse{Status: "OK"}, nil
}

func toIdentity(c *auth.Claims) authrpc.Identity {
	return authrpc.Identity{ID: c.UserID, Email: c.Email, Name: c.Name}
}

func toSession(sess *services.Session) authrpc.Session {
	return authrpc.Session{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toIdentity(sess.Claims)}
}

var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidSignature, codes.Unauthenticated},
	{common.ErrTokenMalformed, codes.Unauthenticated},
	{common.ErrUnauthorized, codes.Unauthenticated},
	{common.ErrNotFound, codes.NotFound},
	{common.ErrDuplicateEmail, codes.AlreadyExists},
	{common.ErrValidation, codes.InvalidArgument},
}

// toStatus converts service errors to gRPC statuses. Only sentinel text
// leaves the server; validation errors keep their detail.
func toStatus(err error) error {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			msg := sc.err.Error()
			if sc.code == codes.InvalidArgument {
				msg = err.Error()
			}
			return status.Error(sc.code, msg)
		}
	}
	return status.Error(codes.Internal, common.ErrInternal.Error())
}

func (s *GRPCServer) logFailure(ctx context.Context, op string, err error) {
	if status.Code(toStatus(err)) == codes.Internal {
		s.logger.Error(ctx, op+" failed", "error", err)
		return
	}
	s.logger.Debug(ctx, op+" rejected", "error", err)
}
