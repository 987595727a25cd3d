package metrics

// Config defines the configuration for the Prometheus metrics server.
type Config struct {
	// Address determines the network address where the Prometheus
	// metrics HTTP server listens.
	//
	// Example values:
	//   - ":9090"   → Listen on all interfaces, port 9090
	//   - "127.0.0.1:9100" → Listen only on localhost, port 9100
	//
	// Default: ":9090"
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS" default:":9090"`

	// EnableDefaultCollectors controls whether the built-in Go runtime
	// and process metrics are automatically registered.
	//
	// Default: true
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS" default:"true"`

	// Namespace sets a global prefix for the metrics defined by this package.
	//
	// Example:
	//   Namespace: "sentence_embed"
	//   → Metric name becomes "sentence_embed_pipeline_invocations_total"
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached as a constant "service" label to every metric.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME" default:"sentence-embed"`
}
