package server

import "time"

// Config defines the HTTP listener of the embedding API.
type Config struct {
	// Address is the host:port the API listens on.
	Address string `yaml:"address" envconfig:"SERVER_ADDRESS" default:":8080"`

	// ReadTimeout bounds reading a whole request, body included.
	ReadTimeout time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout bounds writing the response. Model inference happens
	// before the first byte is written, so keep it above the slowest call.
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
}
