package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sentence-embed/v1/logger"
)

// FXModule provides a Uber FX module that configures distributed tracing.
// It needs a tracer.Config and a *logger.LoggerClient in the container.
var FXModule = fx.Module("tracer",
	fx.Provide(
		func(cfg Config, log *logger.LoggerClient) *Tracer {
			return NewClient(cfg, log)
		},
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers shutdown hooks for the tracer with the FX lifecycle,
// so pending spans are flushed to the exporter when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer == nil || tracer.tracer == nil {
				return nil
			}
			tracer.logger.Info("shutting down tracer", nil, nil)
			return tracer.Shutdown(ctx)
		},
	})
}
