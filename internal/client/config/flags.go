package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/userauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the server's gRPC endpoint
//	-r int      request timeout (in seconds)
//
// Flags other than these are dropped by flagx.FilterArgs before parsing.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	requestTimeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-r"})); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
	return nil
}
