// Package logger provides structured logging on top of go.uber.org/zap.
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		EnableTracing: true,
//		ServiceName:   "sentence-embed",
//	})
//
//	log.Info("Client ready", nil, map[string]interface{}{
//		"model_path": "/models/nlp_gte_sentence-embedding_chinese-base",
//	})
//
//	// trace_id and span_id are added when ctx carries an active span
//	log.InfoWithContext(ctx, "Similarity computed", nil, nil)
//
// # FX Module Integration
//
//	app := fx.New(
//		fx.Supply(logger.Config{Level: logger.Info}),
//		logger.FXModule,
//	)
//
// # Runtime Level Changes
//
// The minimum level is held in a zap.AtomicLevel. SetLevel changes it for
// every holder of the client; quiet mode uses this to raise the level to
// error once per process.
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # add trace_id/span_id in *WithContext methods
//	LOGGER_SERVICE_NAME=my-service  # value of the "service" field
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
