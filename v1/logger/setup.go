package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient is a wrapper around Uber's Zap logger.
// It provides a simplified interface to the underlying Zap logger,
// with additional functionality specific to the application's needs.
type LoggerClient struct {
	// Zap is the underlying zap.Logger instance
	// This is exposed to allow direct access to Zap-specific functionality
	// when needed, but most logging should go through the wrapper methods.
	Zap *zap.Logger

	// level backs the minimum level of Zap and can be changed at runtime
	// through SetLevel.
	level zap.AtomicLevel

	// tracingEnabled indicates whether tracing integration is enabled
	// When true, logging methods will automatically extract trace context
	// and include trace/span IDs in log entries
	tracingEnabled bool
}

// NewLoggerClient initializes and returns a new instance of the logger based on configuration.
// This function creates a configured Zap logger with appropriate encoding, log levels,
// and output destinations.
//
// The logger is configured with:
//   - JSON encoding for structured logging
//   - ISO8601 timestamp format
//   - Capital letter level encoding (e.g., "INFO", "ERROR")
//   - Process ID and service name as default fields
//   - Caller information (file and line) included in log entries
//   - Output directed to stderr
//
// If initialization fails, the function will call log.Fatal to terminate the application.
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info})
//	log.Info("Application started", nil, nil)
func NewLoggerClient(cfg Config) *LoggerClient {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	config := zap.Config{
		Level:             level,
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &LoggerClient{
		Zap:            logger,
		level:          level,
		tracingEnabled: cfg.EnableTracing,
	}
}

// NewWithCore builds a LoggerClient on top of an existing zapcore.Core.
// The level still gates entries before they reach the core, so SetLevel
// keeps working. Mostly useful in tests together with zaptest/observer.
func NewWithCore(core zapcore.Core, level string, enableTracing bool) *LoggerClient {
	atomic := zap.NewAtomicLevelAt(parseLevel(level))
	gated, err := zapcore.NewIncreaseLevelCore(core, atomic)
	if err != nil {
		// core is stricter than the requested level; keep it as is
		gated = core
	}
	return &LoggerClient{
		Zap:            zap.New(gated, zap.AddCaller(), zap.AddCallerSkip(1)),
		level:          atomic,
		tracingEnabled: enableTracing,
	}
}

// SetLevel changes the minimum level of the logger at runtime.
// Unknown values fall back to info.
func (l *LoggerClient) SetLevel(level string) {
	l.level.SetLevel(parseLevel(level))
}

// Level reports the current minimum level as one of the package constants.
func (l *LoggerClient) Level() string {
	switch l.level.Level() {
	case zap.DebugLevel:
		return Debug
	case zap.WarnLevel:
		return Warning
	case zap.ErrorLevel, zap.DPanicLevel, zap.PanicLevel, zap.FatalLevel:
		return Error
	default:
		return Info
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
