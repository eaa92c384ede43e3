package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/BrandonDHaskell/scanlog/internal/bootstrap"
)

func main() {
	app := fx.New(bootstrap.Module)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		// Includes store initialization failures: nothing gets scanned
		// without a schema.
		slog.Error("scanlog failed to start", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("scanlog stopped with errors", "error", err)
		os.Exit(1)
	}
}
