package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"go.uber.org/fx"

	"github.com/BrandonDHaskell/scanlog/internal/config"
	"github.com/BrandonDHaskell/scanlog/internal/db"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store/sqlite"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
		NewWriter,
		fx.Annotate(sqlite.NewScanEventStore, fx.As(new(store.ScanEventStore))),
	),
)

// NewDB opens the store and applies migrations. A failure here is an
// initialization error and keeps the application from starting.
func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	conn, err := db.Open(context.Background(), db.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, err
	}
	logger.Info("scan store ready", slog.String("path", cfg.DBPath))

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return conn.Close()
		},
	})
	return conn, nil
}

// NewWriter is stopped before the DB closes and after the sampling loop,
// so a scan being written at shutdown still commits.
func NewWriter(lc fx.Lifecycle, conn *sql.DB) *db.Worker {
	w := db.NewWorker(conn)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			w.Close()
			return nil
		},
	})
	return w
}
