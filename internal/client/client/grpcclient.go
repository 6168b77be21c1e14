package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/userauth/internal/authrpc"
	"github.com/dmitrijs2005/userauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authAPI is the subset of authrpc.AuthServiceClient used here.
type authAPI interface {
	Register(ctx context.Context, in *authrpc.RegisterRequest, opts ...grpc.CallOption) (*authrpc.RegisterResponse, error)
	Login(ctx context.Context, in *authrpc.LoginRequest, opts ...grpc.CallOption) (*authrpc.LoginResponse, error)
	Me(ctx context.Context, in *authrpc.MeRequest, opts ...grpc.CallOption) (*authrpc.MeResponse, error)
	ResetPassword(ctx context.Context, in *authrpc.ResetPasswordRequest, opts ...grpc.CallOption) (*authrpc.ResetPasswordResponse, error)
	Ping(ctx context.Context, in *authrpc.PingRequest, opts ...grpc.CallOption) (*authrpc.PingResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authAPI

	mu      sync.RWMutex
	session *authrpc.Session
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the current token, if any. A call that
// fails because the token expired drops the stored session.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	token := s.Token()
	if token != "" {
		ctx = withAccessToken(ctx, token)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err != nil && token != "" {
		if st, ok := status.FromError(err); ok &&
			st.Code() == codes.Unauthenticated &&
			st.Message() == common.ErrTokenExpired.Error() {
			s.Logout()
		}
	}
	return err
}

// NewGRPCClient creates a client for the server at endpointURL. The
// connection is established lazily on the first call.
func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	return newGRPCClient(endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func newGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	opts = append(opts, grpc.WithUnaryInterceptor(c.accessTokenInterceptor))
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = authrpc.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Token returns the token of the current session or "".
func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Session returns a copy of the current session, or nil when logged out.
func (s *GRPCClient) Session() *authrpc.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

func (s *GRPCClient) LoggedIn() bool {
	return s.Token() != ""
}

// Logout forgets the current session. Tokens are stateless, so the server
// is not involved.
func (s *GRPCClient) Logout() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

func (s *GRPCClient) setSession(sess authrpc.Session) {
	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()
}

func (s *GRPCClient) Register(ctx context.Context, email, password, name string) (*authrpc.User, error) {
	resp, err := s.client.Register(ctx, &authrpc.RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.User, nil
}

// Login authenticates and stores the returned session.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*authrpc.Session, error) {
	resp, err := s.client.Login(ctx, &authrpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setSession(resp.Session)
	return &resp.Session, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*authrpc.MeResponse, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	resp, err := s.client.Me(ctx, &authrpc.MeRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// ResetPassword changes the password of the logged-in user and replaces the
// stored session with the freshly issued one.
func (s *GRPCClient) ResetPassword(ctx context.Context, email, password string) (*authrpc.Session, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	resp, err := s.client.ResetPassword(ctx, &authrpc.ResetPasswordRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setSession(resp.Session)
	return &resp.Session, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &authrpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

var authErrors = []error{
	common.ErrInvalidCredentials,
	common.ErrTokenExpired,
	common.ErrInvalidSignature,
	common.ErrTokenMalformed,
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		for _, e := range authErrors {
			if st.Message() == e.Error() {
				return e
			}
		}
		return common.ErrUnauthorized
	case codes.PermissionDenied:
		return common.ErrUnauthorized
	case codes.AlreadyExists:
		return common.ErrDuplicateEmail
	case codes.NotFound:
		return common.ErrNotFound
	case codes.InvalidArgument:
		detail := strings.TrimPrefix(st.Message(), common.ErrValidation.Error()+": ")
		return fmt.Errorf("%w: %s", common.ErrValidation, detail)
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
