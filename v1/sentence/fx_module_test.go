package sentence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/sentence-embed/v1/logger"
)

func TestFXModuleProvidesClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := &closingPipeline{Pipeline: NewMockPipeline(ctrl)}
	cfg := NewConfig(WithModelPath(t.TempDir()), WithQuiet(false))

	var (
		client      *Client
		hasDeadline bool
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Supply(logger.Config{Level: logger.Error}),
		logger.FXModule,
		fx.Provide(func() PipelineFactory {
			return func(ctx context.Context, _ PipelineOptions) (Pipeline, error) {
				_, hasDeadline = ctx.Deadline()
				return p, nil
			}
		}),
		FXModule,
		fx.Populate(&client),
	)

	require.NotNil(t, client)
	_, err := client.Encode(context.Background(), "early")
	assert.ErrorIs(t, err, ErrNotStarted)

	app.RequireStart()
	assert.True(t, hasDeadline, "pipeline must be loaded with the start context")
	assert.Equal(t, cfg.ResolveModelPath(), client.ModelPath())

	app.RequireStop()
	assert.Equal(t, 1, p.closed)
}

func TestFXModuleStartFailsWhenPipelineCannotLoad(t *testing.T) {
	loadErr := &PipelineError{Backend: BackendProcess, Op: "load", Message: "bad weights"}
	cfg := NewConfig(WithModelPath(t.TempDir()), WithQuiet(false))

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(func() PipelineFactory {
			return func(context.Context, PipelineOptions) (Pipeline, error) { return nil, loadErr }
		}),
		FXModule,
		fx.Invoke(func(*Client) {}),
		fx.NopLogger,
	)
	require.NoError(t, app.Err())

	err := app.Start(context.Background())
	assert.ErrorIs(t, err, loadErr)
	_ = app.Stop(context.Background())
}

func TestFXModuleFailsOnMissingModel(t *testing.T) {
	cfg := NewConfig(WithModelPath("/definitely/not/here"), WithQuiet(false))

	app := fx.New(
		fx.Supply(cfg),
		FXModule,
		fx.Invoke(func(*Client) {}),
		fx.NopLogger,
	)
	err := app.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model path does not exist: /definitely/not/here")
}
