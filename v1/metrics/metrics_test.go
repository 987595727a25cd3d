package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersPipelineInstruments(t *testing.T) {
	m := NewMetrics(Config{Address: ":0", ServiceName: "test"})

	m.IncrementInvocations("similarity", "success")
	m.IncrementInvocations("similarity", "success")
	m.IncrementInvocations("encode", "error")
	m.RecordInvocationDuration(time.Now().Add(-50*time.Millisecond), "similarity")
	m.ObserveModelLoad(time.Now().Add(-2*time.Second), "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocationsTotal.WithLabelValues("similarity", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocationsTotal.WithLabelValues("encode", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.invocationDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.modelLoadDuration))
}

func TestNamespacePrefixesMetricNames(t *testing.T) {
	m := NewMetrics(Config{Namespace: "sentence_embed", ServiceName: "test"})
	m.IncrementRequests("/v1/encode", "200")

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sentence_embed_http_requests_total")
}

func TestInstrumentsCarryServiceLabel(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "svc"})
	m.IncrementInvocations("encode", "success")

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() != "pipeline_invocations_total" {
			continue
		}
		found = true
		labels := map[string]string{}
		for _, lp := range f.GetMetric()[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "svc", labels["service"])
		assert.Equal(t, "encode", labels["operation"])
	}
	assert.True(t, found, "pipeline_invocations_total not gathered")
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "svc"})
	m.IncrementInvocations("encode", "success")

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `pipeline_invocations_total{operation="encode",service="svc",status="success"} 1`)
}
