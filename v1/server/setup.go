package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server exposes an Embedder over a JSON HTTP API.
type Server struct {
	Engine *gin.Engine
	HTTP   *http.Server

	embedder Embedder
	log      Logger
	metrics  RequestRecorder
	tracer   Tracer
}

// Option configures NewServer.
type Option func(*Server)

// WithMetrics records request counts and latencies per route.
func WithMetrics(m RequestRecorder) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracer opens a span per request.
func WithTracer(t Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// NewServer builds the router and the http.Server. Nothing listens until
// HTTP.ListenAndServe is called, usually by the Fx lifecycle hook.
func NewServer(cfg Config, embedder Embedder, log Logger, opts ...Option) *Server {
	s := &Server{
		embedder: embedder,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())
	if s.tracer != nil {
		r.Use(s.traced())
	}
	if s.metrics != nil {
		r.Use(s.measured())
	}
	r.Use(s.accessLog())

	r.GET("/healthz", s.health)

	apiV1 := r.Group("/v1")
	{
		apiV1.POST("/similarity", s.similarity)
		apiV1.POST("/encode", s.encode)
		apiV1.POST("/batch-similarity", s.batchSimilarity)
	}

	s.Engine = r
	s.HTTP = &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}
