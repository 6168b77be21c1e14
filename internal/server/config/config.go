// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/repomanager"
)

// Config holds runtime settings for the userauth server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses; an empty value
//     disables that transport.
//   - StorageType: postgres, sqlite or memory. DatabaseDSN is the pgx DSN or
//     the SQLite file name.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required.
//   - TokenTTL: lifetime of issued tokens.
//   - AuthCookieName: cookie consulted by the HTTP gate and set on login.
//   - HashIterations / HashKeyLength / SaltLength: PBKDF2 parameters.
//     Changing them invalidates stored hashes.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	StorageType      string
	DatabaseDSN      string
	SecretKey        string
	TokenTTL         time.Duration
	AuthCookieName   string
	HashIterations   int
	HashKeyLength    int
	SaltLength       int
	LogLevel         string
	ShutdownTimeout  time.Duration
}

// LoadDefaults populates Config with development defaults. No secret key is
// set, so one must come from the JSON file or -s.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.StorageType = repomanager.StorageMemory
	c.TokenTTL = time.Hour
	c.AuthCookieName = common.DefaultAuthCookieName
	c.HashIterations = auth.DefaultIterations
	c.HashKeyLength = auth.DefaultKeyLength
	c.SaltLength = auth.DefaultSaltLength
	c.LogLevel = "info"
	c.ShutdownTimeout = 5 * time.Second
}

// HasherConfig returns the PBKDF2 parameters as the hasher expects them.
func (c *Config) HasherConfig() auth.HasherConfig {
	return auth.HasherConfig{
		Iterations: c.HashIterations,
		KeyLength:  c.HashKeyLength,
		SaltLength: c.SaltLength,
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.TokenTTL < time.Second {
		errs = append(errs, fmt.Errorf("token ttl %s is too short", c.TokenTTL))
	}
	if c.EndpointAddrHTTP == "" && c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("at least one of the http and grpc endpoints is required"))
	}
	switch c.StorageType {
	case repomanager.StorageMemory, repomanager.StorageSQLite:
	case repomanager.StoragePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("postgres storage requires a database dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage type %q", c.StorageType))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. args
// excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
