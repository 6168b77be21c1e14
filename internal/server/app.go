// Package server wires configuration, storage, the user service and the
// HTTP and gRPC transports into a runnable application.
package server

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/config"
	"github.com/dmitrijs2005/userauth/internal/server/httpserver"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userauth/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/userauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	userService *services.UserService
}

// NewApp opens storage, applies migrations and builds the user service.
// Logs go to w as JSON.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(w, level)

	hasher, err := auth.NewHasher(c.HasherConfig())
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}
	codec, err := auth.NewCodec([]byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	rm, err := repomanager.Open(ctx, c.StorageType, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(rm, hasher, codec, c.TokenTTL, logger)

	return &App{config: c, logger: logger, repomanager: rm, userService: us}, nil
}

// Run serves the configured transports until ctx is cancelled, a
// termination signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(ctx, "closing storage", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageType)

	g, ctx := errgroup.WithContext(ctx)

	if app.config.EndpointAddrHTTP != "" {
		hs := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.userService,
			app.config.AuthCookieName, app.config.ShutdownTimeout)
		g.Go(func() error { return hs.Run(ctx) })
	}

	if app.config.EndpointAddrGRPC != "" {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService)
		g.Go(func() error { return s.Run(ctx) })
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
