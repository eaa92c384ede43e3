package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/BrandonDHaskell/scanlog/internal/capture"
	"github.com/BrandonDHaskell/scanlog/internal/config"
	"github.com/BrandonDHaskell/scanlog/internal/pkg/clock"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/service"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
)

var PipelineModule = fx.Module("pipeline",
	fx.Provide(
		service.NewLastScan,
		service.NewRangeExporter,
		NewGate,
		NewFrameSource,
		NewDecoder,
		NewSamplingLoop,
	),
	fx.Invoke(StartSamplingLoop),
)

func NewGate(st store.ScanEventStore, cfg config.Config, logger *slog.Logger, last *service.LastScan) *service.ScanGate {
	return service.NewScanGate(st, service.GateConfig{
		DebounceWindow: cfg.Scan.DebounceWindow(),
		AppendTimeout:  cfg.Scan.AppendTimeout,
	}, logger, last)
}

func NewFrameSource(cfg config.Config, logger *slog.Logger) (service.FrameSource, error) {
	src, err := capture.OpenLineSource(cfg.Input, logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func NewDecoder() service.Decoder {
	return capture.TextDecoder{}
}

func NewSamplingLoop(
	src service.FrameSource,
	dec service.Decoder,
	gate *service.ScanGate,
	c clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *service.SamplingLoop {
	return service.NewSamplingLoop(service.LoopDeps{
		Source:  src,
		Decoder: dec,
		Gate:    gate,
		Clock:   c,
		Logger:  logger,
	}, service.LoopConfig{
		Interval:      cfg.Scan.SamplingInterval(),
		DecodeTimeout: cfg.Scan.DecodeTimeout,
	})
}

func StartSamplingLoop(lc fx.Lifecycle, loop *service.SamplingLoop) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// The loop outlives the start context; Stop ends it.
			loop.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			return loop.Stop()
		},
	})
}
