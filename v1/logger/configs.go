package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config defines the configuration for the logger.
type Config struct {
	// Level is the minimum level that is emitted.
	// One of "debug", "info", "warning", "error". Anything else maps to info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL" default:"info"`

	// EnableTracing adds trace_id and span_id to entries written through the
	// *WithContext methods when the context carries an active span.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME" default:"sentence-embed"`
}
