package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the logger package.
// It provides *LoggerClient built from a logger.Config found in the container
// and registers a hook that flushes buffered entries on shutdown.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(logger.Config{Level: logger.Info}),
//	    logger.FXModule,
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on some platforms; nothing to flush then.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
