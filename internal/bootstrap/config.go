package bootstrap

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/BrandonDHaskell/scanlog/internal/config"
	"github.com/BrandonDHaskell/scanlog/internal/logging"
	"github.com/BrandonDHaskell/scanlog/internal/pkg/clock"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.FromEnv,
		NewLocation,
		NewLogger,
		NewClock,
	),
)

func NewLocation(cfg config.Config) (*time.Location, error) {
	return cfg.Scan.Location()
}

func NewLogger(cfg config.Config, loc *time.Location) *slog.Logger {
	return logging.New(cfg.Env, cfg.Log, loc)
}

func NewClock(loc *time.Location) clock.Clock {
	return clock.NewRealClock(loc)
}
