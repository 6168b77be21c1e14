package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-g", ":6000", "-t", "postgres", "-d", "db", "-s", "secret",
				"-l", "15", "-k", "sid", "-i", "300000", "-v", "debug",
			},
			expected: &Config{
				EndpointAddrHTTP: "127.0.0.1:9090",
				EndpointAddrGRPC: ":6000",
				StorageType:      "postgres",
				DatabaseDSN:      "db",
				SecretKey:        "secret",
				TokenTTL:         15 * time.Minute,
				AuthCookieName:   "sid",
				HashIterations:   300000,
				LogLevel:         "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "cfg.json", "-s", "secret", "--verbose"},
			expected: &Config{SecretKey: "secret", TokenTTL: 30 * time.Second},
		},
		{
			name:    "bad int",
			args:    []string{"-l", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{TokenTTL: 30 * time.Second}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
