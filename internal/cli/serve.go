package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/sentence-embed/v1/logger"
	"github.com/Aleph-Alpha/sentence-embed/v1/metrics"
	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
	"github.com/Aleph-Alpha/sentence-embed/v1/server"
	"github.com/Aleph-Alpha/sentence-embed/v1/tracer"
)

const (
	startTimeout = 10 * time.Minute
	stopTimeout  = 30 * time.Second
)

// serviceConfigs holds the settings of the infrastructure modules. They are
// read from the environment without a prefix, e.g. ZAP_LOGGER_LEVEL.
type serviceConfigs struct {
	Logger  logger.Config
	Metrics metrics.Config
	Tracer  tracer.Config
	Server  server.Config
}

func loadServiceConfigs() (serviceConfigs, error) {
	var c serviceConfigs
	for name, target := range map[string]any{
		"logger":  &c.Logger,
		"metrics": &c.Metrics,
		"tracer":  &c.Tracer,
		"server":  &c.Server,
	} {
		if err := envconfig.Process("", target); err != nil {
			return serviceConfigs{}, fmt.Errorf("read %s config: %w", name, err)
		}
	}
	return c, nil
}

// serveModules assembles the Fx application behind the serve command.
func serveModules(cfg sentence.Config, svc serviceConfigs) fx.Option {
	return fx.Options(
		fx.Supply(cfg, svc.Logger, svc.Metrics, svc.Tracer, svc.Server),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		sentence.FXModule,
		server.FXModule,
	)
}

func (a *app) serveCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the embedding API over HTTP",
		Long: `Load the model once and serve /v1/similarity, /v1/encode and /v1/batch-similarity.
Prometheus metrics are exposed on METRICS_ADDRESS (default :9090).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			svc, err := loadServiceConfigs()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("address") {
				svc.Server.Address = address
			}

			gin.SetMode(gin.ReleaseMode)
			fxApp := fx.New(
				serveModules(cfg, svc),
				fx.WithLogger(func(log *logger.LoggerClient) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: log.Zap}
				}),
			)
			return run(cmd.Context(), fxApp)
		},
	}

	cmd.Flags().StringVar(&address, "address", ":8080", "Listen address of the API")
	return cmd
}

// run starts the application, waits for a shutdown signal or ctx to end,
// then stops it.
func run(ctx context.Context, fxApp *fx.App) error {
	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}

	select {
	case <-fxApp.Done():
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return fxApp.Stop(stopCtx)
}
