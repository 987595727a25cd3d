package sentence

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultModelPath is used when no model path is configured. It is
	// relative, and relative paths are resolved against the working
	// directory of the process, not against the location of the binary or
	// the source tree. Run from the project root, or set an absolute path,
	// to pick up the bundled models directory.
	DefaultModelPath = "models/nlp_gte_sentence-embedding_chinese-base"

	DefaultDevice         = "cpu"
	DefaultSequenceLength = 512
	DefaultPython         = "python3"
	DefaultHTTPTimeoutS   = 30

	// BackendProcess runs the pipeline in a child Python process.
	BackendProcess = "process"
	// BackendHTTP calls a pipeline served over HTTP.
	BackendHTTP = "http"

	// EnvPrefix prefixes every environment variable read by LoadConfig,
	// e.g. SENTENCE_MODEL_PATH.
	EnvPrefix = "SENTENCE"
)

// Config holds the settings of one Client. It is a value type: the Client
// keeps its own copy and never changes it.
type Config struct {
	// ModelPath is the local directory holding the pre-trained model.
	// A leading "~" is expanded to the user's home directory.
	ModelPath string `yaml:"model_path" envconfig:"MODEL_PATH"`

	// Device is the inference device, e.g. "cpu" or "cuda".
	Device string `yaml:"device" envconfig:"DEVICE"`

	// SequenceLength is the maximum sequence length passed to the pipeline.
	SequenceLength int `yaml:"sequence_length" envconfig:"SEQUENCE_LENGTH"`

	// Quiet suppresses diagnostic logging and standard stream output while
	// the model loads and runs.
	Quiet bool `yaml:"quiet" envconfig:"QUIET"`

	// Backend selects the pipeline implementation: "process" or "http".
	Backend string `yaml:"backend" envconfig:"BACKEND"`

	// PythonBin is the interpreter used by the process backend.
	PythonBin string `yaml:"python" envconfig:"PYTHON"`

	// Endpoint is the base URL of the pipeline server used by the http backend.
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`

	// HTTPTimeoutS is the request timeout of the http backend in seconds.
	HTTPTimeoutS int `yaml:"http_timeout_seconds" envconfig:"HTTP_TIMEOUT_SECONDS"`
}

// ConfigOption overrides a single Config field.
type ConfigOption func(*Config)

// WithModelPath sets the model directory.
func WithModelPath(path string) ConfigOption {
	return func(c *Config) { c.ModelPath = path }
}

// WithDevice sets the inference device.
func WithDevice(device string) ConfigOption {
	return func(c *Config) { c.Device = device }
}

// WithSequenceLength sets the maximum sequence length.
func WithSequenceLength(n int) ConfigOption {
	return func(c *Config) { c.SequenceLength = n }
}

// WithQuiet toggles quiet mode.
func WithQuiet(quiet bool) ConfigOption {
	return func(c *Config) { c.Quiet = quiet }
}

// WithBackend selects the pipeline backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) { c.Backend = backend }
}

// WithEndpoint sets the pipeline server URL for the http backend.
func WithEndpoint(endpoint string) ConfigOption {
	return func(c *Config) { c.Endpoint = endpoint }
}

// WithPython sets the interpreter of the process backend.
func WithPython(bin string) ConfigOption {
	return func(c *Config) { c.PythonBin = bin }
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ModelPath:      DefaultModelPath,
		Device:         DefaultDevice,
		SequenceLength: DefaultSequenceLength,
		Quiet:          true,
		Backend:        BackendProcess,
		PythonBin:      DefaultPython,
		HTTPTimeoutS:   DefaultHTTPTimeoutS,
	}
}

// NewConfig builds a Config from the defaults and the given overrides.
// An empty model path falls back to DefaultModelPath; "~" is expanded.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	cfg.ModelPath = expandUser(cfg.ModelPath)
	return cfg
}

// LoadConfig builds a Config from, in increasing priority: the defaults, the
// YAML file at path (skipped when path is empty), and SENTENCE_* environment
// variables. A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("sentence: load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("sentence: read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("sentence: parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("sentence: read environment: %w", err)
	}

	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	cfg.ModelPath = expandUser(cfg.ModelPath)
	return cfg, nil
}

// Validate reports configuration values no backend can work with.
func (c Config) Validate() error {
	if c.SequenceLength <= 0 {
		return fmt.Errorf("sequence length must be positive, got %d", c.SequenceLength)
	}
	if strings.TrimSpace(c.Device) == "" {
		return errors.New("device must not be empty")
	}
	switch c.Backend {
	case BackendProcess:
		if c.PythonBin == "" {
			return errors.New("process backend requires a python interpreter")
		}
	case BackendHTTP:
		if c.Endpoint == "" {
			return errors.New("http backend requires an endpoint")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// ResolveModelPath returns the absolute, user-expanded model path. Symlinks
// are resolved when the path exists. Existence is not checked here.
func (c Config) ResolveModelPath() string {
	p := c.ModelPath
	if p == "" {
		p = DefaultModelPath
	}
	p = expandUser(p)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}

// HTTPTimeout returns HTTPTimeoutS as a duration, falling back to the default.
func (c Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutS <= 0 {
		return DefaultHTTPTimeoutS * time.Second
	}
	return time.Duration(c.HTTPTimeoutS) * time.Second
}

// expandUser replaces a leading "~" or "~/" with the home directory.
// "~user" forms are returned unchanged.
func expandUser(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
