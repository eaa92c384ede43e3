package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
)

// All variables are read with the SCANLOG_ prefix, e.g. SCANLOG_DB_PATH.
// Nested structs add their field name: SCANLOG_SCAN_DEBOUNCE_WINDOW_SECONDS, SCANLOG_LOG_LEVEL.
const envPrefix = "SCANLOG"

type Config struct {
	Env string `envconfig:"ENV" default:"dev"` // "dev" | "prod"

	// DB
	DBPath string `envconfig:"DB_PATH" default:"./data/barcodes.db"`

	Scan ScanConfig
	Log  LogConfig

	// Surfaces. An empty address disables the listener.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:""`

	// Input is the line source for keyboard-wedge scanners; "stdin" reads os.Stdin.
	Input string `envconfig:"INPUT" default:"stdin"`
}

type ScanConfig struct {
	DebounceWindowSeconds float64 `envconfig:"DEBOUNCE_WINDOW_SECONDS" default:"1.0"`
	SamplingIntervalMs    int     `envconfig:"SAMPLING_INTERVAL_MS" default:"100"`

	// 0 disables the timeout.
	DecodeTimeout time.Duration `envconfig:"DECODE_TIMEOUT" default:"0"`
	AppendTimeout time.Duration `envconfig:"APPEND_TIMEOUT" default:"0"`

	// TimeZone is the capture zone used for scanned_at / scan_date / scan_time.
	TimeZone string `envconfig:"TIMEZONE" default:"Local"`
}

type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

func (c ScanConfig) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowSeconds * float64(time.Second))
}

func (c ScanConfig) SamplingInterval() time.Duration {
	return time.Duration(c.SamplingIntervalMs) * time.Millisecond
}

// Location resolves TimeZone. "Local" and "" map to time.Local.
func (c ScanConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.TimeZone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", tz)
	}
	return loc, nil
}

func (c Config) Validate() error {
	if c.Scan.DebounceWindowSeconds <= 0 {
		return errors.Newf("debounce window must be positive, got %v", c.Scan.DebounceWindowSeconds)
	}
	if c.Scan.SamplingIntervalMs <= 0 {
		return errors.Newf("sampling interval must be positive, got %d", c.Scan.SamplingIntervalMs)
	}
	if c.Scan.DecodeTimeout < 0 || c.Scan.AppendTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db path is required")
	}
	if _, err := c.Scan.Location(); err != nil {
		return err
	}
	return nil
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process env config")
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewTestConfig returns defaults suitable for tests: in-memory friendly, no listeners.
func NewTestConfig() Config {
	return Config{
		Env:    "dev",
		DBPath: ":memory:",
		Scan: ScanConfig{
			DebounceWindowSeconds: 1.0,
			SamplingIntervalMs:    100,
			TimeZone:              "UTC",
		},
		Log: LogConfig{
			Level:      "error",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
	}
}
