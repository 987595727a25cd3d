package metrics

import "time"

// MetricsCollector provides an interface for collecting and exposing application metrics.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// IncrementRequests increments the HTTP request counter for a route and status.
	IncrementRequests(route, status string)

	// RecordRequestDuration records the duration (in seconds) of an HTTP route.
	RecordRequestDuration(start time.Time, route string)

	// IncrementInvocations counts one pipeline invocation for an operation
	// ("similarity", "encode") with its outcome ("success", "error").
	IncrementInvocations(operation, status string)

	// RecordInvocationDuration records how long one pipeline invocation took.
	RecordInvocationDuration(start time.Time, operation string)

	// ObserveModelLoad records how long pipeline construction took.
	ObserveModelLoad(start time.Time, status string)
}
