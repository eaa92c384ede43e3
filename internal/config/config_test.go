package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/scanlog/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "./data/barcodes.db", cfg.DBPath)
	assert.Equal(t, time.Second, cfg.Scan.DebounceWindow())
	assert.Equal(t, 100*time.Millisecond, cfg.Scan.SamplingInterval())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.GRPCAddr)
	assert.Equal(t, "stdin", cfg.Input)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SCANLOG_ENV", "PROD")
	t.Setenv("SCANLOG_DB_PATH", "/var/lib/scanlog/scans.db")
	t.Setenv("SCANLOG_SCAN_DEBOUNCE_WINDOW_SECONDS", "2.5")
	t.Setenv("SCANLOG_SCAN_SAMPLING_INTERVAL_MS", "250")
	t.Setenv("SCANLOG_SCAN_DECODE_TIMEOUT", "80ms")
	t.Setenv("SCANLOG_SCAN_TIMEZONE", "UTC")
	t.Setenv("SCANLOG_GRPC_ADDR", ":9090")
	t.Setenv("SCANLOG_LOG_LEVEL", "debug")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "/var/lib/scanlog/scans.db", cfg.DBPath)
	assert.Equal(t, 2500*time.Millisecond, cfg.Scan.DebounceWindow())
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.SamplingInterval())
	assert.Equal(t, 80*time.Millisecond, cfg.Scan.DecodeTimeout)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.Scan.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestFromEnv_UnknownEnvFallsBackToDev(t *testing.T) {
	t.Setenv("SCANLOG_ENV", "staging")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
}

func TestFromEnv_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero window", "SCANLOG_SCAN_DEBOUNCE_WINDOW_SECONDS", "0"},
		{"negative interval", "SCANLOG_SCAN_SAMPLING_INTERVAL_MS", "-5"},
		{"not a number", "SCANLOG_SCAN_SAMPLING_INTERVAL_MS", "fast"},
		{"unknown zone", "SCANLOG_SCAN_TIMEZONE", "Mars/Olympus"},
		{"negative timeout", "SCANLOG_SCAN_APPEND_TIMEOUT", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := config.FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestNewTestConfig_Valid(t *testing.T) {
	cfg := config.NewTestConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":memory:", cfg.DBPath)
}
