package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/BrandonDHaskell/scanlog/internal/config"
	"github.com/BrandonDHaskell/scanlog/internal/grpcapi"
	"github.com/BrandonDHaskell/scanlog/internal/httpapi"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/service"
)

var ServerModule = fx.Module("server",
	fx.Provide(
		NewHTTPServer,
		NewGRPCServer,
	),
	fx.Invoke(StartHTTPServer, StartGRPCServer),
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger, exp *service.RangeExporter, last *service.LastScan) *httpapi.Server {
	return httpapi.NewServer(httpapi.Dependencies{
		Logger:   logger,
		Addr:     cfg.HTTPAddr,
		Exporter: exp,
		LastScan: last,
	})
}

func NewGRPCServer(cfg config.Config, logger *slog.Logger, exp *service.RangeExporter) *grpcapi.Server {
	return grpcapi.NewServer(grpcapi.Dependencies{
		Logger:   logger,
		Addr:     cfg.GRPCAddr,
		Exporter: exp,
	})
}

func StartHTTPServer(lc fx.Lifecycle, cfg config.Config, srv *httpapi.Server, logger *slog.Logger) {
	if cfg.HTTPAddr == "" {
		logger.Info("http export disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				logger.Info("http listening", slog.String("addr", cfg.HTTPAddr))
				if err := srv.Start(); err != nil {
					logger.Error("http server error", slog.String("error", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func StartGRPCServer(lc fx.Lifecycle, cfg config.Config, srv *grpcapi.Server, logger *slog.Logger) {
	if cfg.GRPCAddr == "" {
		logger.Info("grpc export disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				logger.Info("grpc listening", slog.String("addr", cfg.GRPCAddr))
				if err := srv.Start(); err != nil {
					logger.Error("grpc server error", slog.String("error", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
