package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/userauth/internal/authrpc"
	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
	"github.com/dmitrijs2005/userauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// fakeUsers authenticates exactly one token.
type fakeUsers struct {
	validToken string
	authErr    error
}

func (f *fakeUsers) Register(context.Context, string, string, string) (*models.User, error) {
	return nil, common.ErrInternal
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.Session, error) {
	return nil, common.ErrInvalidCredentials
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	if token == f.validToken {
		return &auth.Claims{UserID: 42, Email: "user@x.com"}, nil
	}
	if f.authErr != nil {
		return nil, f.authErr
	}
	return nil, common.ErrInvalidSignature
}

func (f *fakeUsers) ResetPassword(context.Context, string, string, string) (*services.Session, error) {
	return nil, common.ErrInternal
}

func newTestServer(users UserService) *GRPCServer {
	return NewGRPCServer("", logging.Nop{}, users)
}

func incoming(pairs ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(pairs...))
}

func TestInterceptor_PublicMethodWithoutToken(t *testing.T) {
	s := newTestServer(&fakeUsers{})
	info := &grpc.UnaryServerInfo{FullMethod: authrpc.AuthService_Login_FullMethodName}

	called := false
	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		called = true
		return "ok", nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_ProtectedMethod(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		authErr error
		wantMsg string
	}{
		{name: "no metadata", ctx: context.Background(), wantMsg: "unauthorized"},
		{name: "no header", ctx: incoming("x-other", "1"), wantMsg: "unauthorized"},
		{name: "not bearer", ctx: incoming("authorization", "Token good"), wantMsg: "unauthorized"},
		{name: "bad signature", ctx: incoming("authorization", "Bearer forged"), wantMsg: "invalid token signature"},
		{name: "expired", ctx: incoming("authorization", "Bearer old"), authErr: common.ErrTokenExpired, wantMsg: "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeUsers{validToken: "good", authErr: tt.authErr})
			info := &grpc.UnaryServerInfo{FullMethod: authrpc.AuthService_Me_FullMethodName}

			_, err := s.accessTokenInterceptor(tt.ctx, nil, info, func(context.Context, any) (any, error) {
				t.Fatal("handler must not run for a rejected call")
				return nil, nil
			})
			require.Error(t, err)
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
			assert.Equal(t, tt.wantMsg, status.Convert(err).Message())
		})
	}
}

func TestInterceptor_ValidTokenSetsClaims(t *testing.T) {
	s := newTestServer(&fakeUsers{validToken: "good"})
	info := &grpc.UnaryServerInfo{FullMethod: authrpc.AuthService_ResetPassword_FullMethodName}

	var got *auth.Claims
	_, err := s.accessTokenInterceptor(incoming("authorization", "Bearer good"), nil, info, func(ctx context.Context, _ any) (any, error) {
		got, _ = auth.ClaimsFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.UserID)
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrInvalidCredentials, codes.Unauthenticated},
		{common.ErrNotFound, codes.NotFound},
		{common.ErrDuplicateEmail, codes.AlreadyExists},
		{common.ErrValidation, codes.InvalidArgument},
		{common.ErrInternal, codes.Internal},
		{context.DeadlineExceeded, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(toStatus(tt.err)), tt.err.Error())
	}
}
