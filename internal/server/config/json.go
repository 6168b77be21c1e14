package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/userauth/internal/flagx"
	"github.com/dmitrijs2005/userauth/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "90s" style
// strings or integer nanoseconds. Absent or zero fields leave the current
// value untouched.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	StorageType      string         `json:"storage_type"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	TokenTTL         timex.Duration `json:"token_ttl"`
	AuthCookieName   string         `json:"auth_cookie_name"`
	HashIterations   int            `json:"hash_iterations"`
	HashKeyLength    int            `json:"hash_key_length"`
	SaltLength       int            `json:"salt_length"`
	LogLevel         string         `json:"log_level"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StorageType, c.StorageType)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AuthCookieName, c.AuthCookieName)
	setString(&config.LogLevel, c.LogLevel)
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HashIterations != 0 {
		config.HashIterations = c.HashIterations
	}
	if c.HashKeyLength != 0 {
		config.HashKeyLength = c.HashKeyLength
	}
	if c.SaltLength != 0 {
		config.SaltLength = c.SaltLength
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
