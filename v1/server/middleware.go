package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const (
	requestIDKey   = "request_id"
	unmatchedRoute = "unmatched"
)

// requestID keeps the caller's X-Request-ID or generates one, and echoes it
// on the response.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// traced continues a trace propagated in the request headers and opens a
// server span for the request.
func (s *Server) traced() gin.HandlerFunc {
	return func(c *gin.Context) {
		carrier := make(map[string]string, len(c.Request.Header))
		for k := range c.Request.Header {
			carrier[strings.ToLower(k)] = c.Request.Header.Get(k)
		}
		ctx := s.tracer.SetCarrierOnContext(c.Request.Context(), carrier)

		ctx, span := s.tracer.StartSpan(ctx, "http "+c.Request.Method+" "+routeOf(c))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		s.tracer.SetAttributes(span, map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.route":       routeOf(c),
			"http.status_code": c.Writer.Status(),
			"request.id":       c.GetString(requestIDKey),
		})
	}
}

func (s *Server) measured() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		s.metrics.RecordRequestDuration(start, route)
		s.metrics.IncrementRequests(route, strconv.Itoa(c.Writer.Status()))
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"route":       routeOf(c),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(requestIDKey),
		}
		if c.Writer.Status() >= 500 {
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			s.log.WarnWithContext(c.Request.Context(), "request failed", err, fields)
			return
		}
		s.log.InfoWithContext(c.Request.Context(), "request served", nil, fields)
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
