// Package httpserver exposes the user service over a JSON HTTP API.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
	"github.com/dmitrijs2005/userauth/internal/server/services"
)

// Authenticator resolves a bearer token to its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Authenticator
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	ResetPassword(ctx context.Context, currentToken, email, newPassword string) (*services.Session, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) (*services.UserPage, error)
}

type HTTPServer struct {
	address         string
	users           UserService
	logger          logging.Logger
	cookieName      string
	shutdownTimeout time.Duration
}

func NewHTTPServer(address string, l logging.Logger, us UserService, cookieName string, shutdownTimeout time.Duration) *HTTPServer {
	if cookieName == "" {
		cookieName = common.DefaultAuthCookieName
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	return &HTTPServer{
		address:         address,
		users:           us,
		logger:          l.With("module", "http_server"),
		cookieName:      cookieName,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler returns the routed API with request logging applied.
func (s *HTTPServer) Handler() http.Handler {
	gate := RequireAuthentication(s.users, s.cookieName)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("GET /auth/me", gate(http.HandlerFunc(s.handleMe)))
	mux.Handle("POST /auth/reset-password", gate(http.HandlerFunc(s.handleResetPassword)))
	mux.Handle("GET /users", gate(http.HandlerFunc(s.handleListUsers)))
	mux.Handle("GET /users/{id}", gate(http.HandlerFunc(s.handleGetUser)))

	return requestLogger(s.logger)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
