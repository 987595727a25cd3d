package tracer

// Config defines the configuration for distributed tracing.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME" default:"sentence-embed"`

	// AppEnv is recorded as the deployment.environment resource attribute.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV" default:"development"`

	// EnableExport turns on the OTLP HTTP exporter. The exporter reads its
	// endpoint from the standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
