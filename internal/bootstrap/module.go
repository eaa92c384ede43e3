package bootstrap

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Module wires the whole application. Stop hooks run in reverse: the
// servers go first, then the sampling loop (letting an in-flight scan
// finish), then the writer, then the database.
var Module = fx.Options(
	ConfigModule,
	DBModule,
	PipelineModule,
	ServerModule,
	fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
		l := &fxevent.SlogLogger{Logger: logger}
		l.UseLogLevel(slog.LevelDebug)
		return l
	}),
)
