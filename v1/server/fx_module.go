package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sentence-embed/v1/logger"
	"github.com/Aleph-Alpha/sentence-embed/v1/metrics"
	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
	"github.com/Aleph-Alpha/sentence-embed/v1/tracer"
)

// FXModule defines the Fx module for the HTTP API.
//
// Dependencies required by this module:
//   - a server.Config
//   - a *sentence.Client
//   - a *logger.LoggerClient
//
// *metrics.Metrics and *tracer.Tracer are used when present.
var FXModule = fx.Module("server",
	fx.Provide(
		NewFXServer,
	),
	fx.Invoke(RegisterServerLifecycle),
)

// ServerParams groups the dependencies of NewFXServer.
type ServerParams struct {
	fx.In

	Config  Config
	Client  *sentence.Client
	Logger  *logger.LoggerClient
	Metrics *metrics.Metrics `optional:"true"`
	Tracer  *tracer.Tracer   `optional:"true"`
}

// NewFXServer builds a Server from the Fx container.
func NewFXServer(p ServerParams) *Server {
	var opts []Option
	if p.Metrics != nil {
		opts = append(opts, WithMetrics(p.Metrics))
	}
	if p.Tracer != nil {
		opts = append(opts, WithTracer(p.Tracer))
	}
	return NewServer(p.Config, p.Client, p.Logger, opts...)
}

// RegisterServerLifecycle binds the listener on start, so a taken port fails
// the application start, and shuts the server down gracefully on stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server, log *logger.LoggerClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", s.HTTP.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting embedding API server", nil, map[string]interface{}{
				"address": ln.Addr().String(),
			})

			go func() {
				if err := s.HTTP.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Embedding API server stopped unexpectedly", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down embedding API server", nil, nil)
			return s.HTTP.Shutdown(ctx)
		},
	})
}
