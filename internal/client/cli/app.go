package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/userauth/internal/authrpc"
	"github.com/dmitrijs2005/userauth/internal/client/client"
	"github.com/dmitrijs2005/userauth/internal/client/config"
)

// authClient is the part of client.GRPCClient the commands use.
type authClient interface {
	Register(ctx context.Context, email, password, name string) (*authrpc.User, error)
	Login(ctx context.Context, email, password string) (*authrpc.Session, error)
	Me(ctx context.Context) (*authrpc.MeResponse, error)
	ResetPassword(ctx context.Context, email, password string) (*authrpc.Session, error)
	Session() *authrpc.Session
	LoggedIn() bool
	Logout()
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	client authClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run starts the REPL and closes the connection when it returns.
func (a *App) Run(ctx context.Context) error {
	defer a.client.Close()
	printlnFn("userauth CLI (type 'help' for commands)")

	pingCtx, cancel := a.callContext(ctx)
	if err := a.client.Ping(pingCtx); err != nil {
		printlnFn("Warning: server", a.config.ServerEndpointAddr, "is not reachable:", err.Error())
	}
	cancel()

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if sess := a.client.Session(); sess != nil {
		return "(" + sess.User.Email + ")"
	}
	return ""
}

// callContext bounds a single request by the configured timeout.
func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var timeout time.Duration
	if a.config != nil {
		timeout = a.config.RequestTimeout
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
