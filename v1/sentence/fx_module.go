package sentence

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sentence-embed/v1/logger"
	"github.com/Aleph-Alpha/sentence-embed/v1/metrics"
	"github.com/Aleph-Alpha/sentence-embed/v1/tracer"
)

// FXModule wires the sentence embedding Client into Fx.
//
// It provides:
//   - *Client                (NewFXClient)
//   - Lifecycle hook         (RegisterClientLifecycle)
//
// A sentence.Config must be supplied. Logger, metrics, tracer and a
// PipelineFactory are picked up when present. The configuration and the model
// path are checked while the container is built; the pipeline itself is
// loaded in OnStart, bounded by the start context.
var FXModule = fx.Module(
	"sentence",

	fx.Provide(
		NewFXClient, // -> *Client
	),

	fx.Invoke(RegisterClientLifecycle),
)

// ClientParams groups the dependencies of NewFXClient.
type ClientParams struct {
	fx.In

	Config  Config
	Logger  *logger.LoggerClient `optional:"true"`
	Metrics *metrics.Metrics     `optional:"true"`
	Tracer  *tracer.Tracer       `optional:"true"`
	Factory PipelineFactory      `optional:"true"`
}

// NewFXClient builds a Client from the Fx container. The returned Client
// answers ErrNotStarted until RegisterClientLifecycle has loaded its pipeline.
func NewFXClient(p ClientParams) (*Client, error) {
	cfg := p.Config

	var opts []Option
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	if p.Metrics != nil {
		opts = append(opts, WithMetrics(p.Metrics))
	}
	if p.Tracer != nil {
		opts = append(opts, WithTracer(p.Tracer))
	}
	if p.Factory != nil {
		opts = append(opts, WithPipelineFactory(p.Factory))
	}
	return newClient(&cfg, opts...)
}

// RegisterClientLifecycle loads the pipeline when the application starts and
// closes it when the application stops.
func RegisterClientLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.load(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
