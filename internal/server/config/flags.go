package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/userauth/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-t", "-d", "-s", "-l", "-k", "-i", "-v"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-t string   storage type: postgres, sqlite or memory
//	-d string   database DSN
//	-s string   token HMAC secret key
//	-l int      token lifetime, minutes
//	-k string   auth cookie name
//	-i int      PBKDF2 iteration count
//	-v string   log level
//
// Unknown flags are dropped by flagx.FilterArgs before parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "http address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "grpc address and port")
	fs.StringVar(&config.StorageType, "t", config.StorageType, "storage type")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenTTL := fs.Int("l", int(config.TokenTTL.Minutes()), "token lifetime (in minutes)")
	fs.StringVar(&config.AuthCookieName, "k", config.AuthCookieName, "auth cookie name")
	fs.IntVar(&config.HashIterations, "i", config.HashIterations, "pbkdf2 iterations")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	// only touch TokenTTL when -l was given, so sub-minute JSON values survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "l" {
			config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
		}
	})
	return nil
}
