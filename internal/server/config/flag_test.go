package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", ":8081", "-g", "127.0.0.1:9090", "-driver", "sqlite", "-d", "db", "-s", "secret",
			"-t", "30", "-i", "5m", "-sink", "s3", "-l", "debug", "-unrelated", "x",
		}, expected: &Config{
			EndpointAddrHTTP:            ":8081",
			EndpointAddrGRPC:            "127.0.0.1:9090",
			DatabaseDriver:              "sqlite",
			DatabaseDSN:                 "db",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 30 * time.Minute,
			ReconcileInterval:           5 * time.Minute,
			ReportSink:                  "s3",
			LogLevel:                    "debug",
		}},
		{name: "no flags keep sub-minute ttl", args: []string{"cmd"},
			expected: &Config{AccessTokenValidityDuration: 90 * time.Second}},
		{name: "bad duration", args: []string{"cmd", "-i", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{AccessTokenValidityDuration: 90 * time.Second}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
