package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestNilManagerHandsOutNoopMeter(t *testing.T) {
	var m *Manager
	counter, err := m.Meter("orders").Int64Counter("orders.operations")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}

func TestManagerDisabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	m, err := NewManager(lc, config.Config{Observability: config.Observability{ServiceName: "orderdesk"}}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, m.TracingEnabled())
	assert.False(t, m.MetricsEnabled())
	assert.Nil(t, m.MetricsHandler())

	lc.RequireStart()
	lc.RequireStop()
}

func TestManagerServesPrometheusMetrics(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	m, err := NewManager(lc, config.Config{Observability: config.Observability{
		ServiceName:     "orderdesk",
		EnableMetrics:   true,
		MetricsExporter: "prometheus",
		PrometheusPath:  "/metrics",
	}}, zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()
	defer lc.RequireStop()

	require.True(t, m.MetricsEnabled())
	counter, err := m.Meter("orders").Int64Counter("orders.operations")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	rec := httptest.NewRecorder()
	m.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orders_operations")
}

func TestManagerUnknownExportersAreDisabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	m, err := NewManager(lc, config.Config{Observability: config.Observability{
		EnableTracing:   true,
		TraceExporter:   "zipkin",
		EnableMetrics:   true,
		MetricsExporter: "statsd",
	}}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, m.TracingEnabled())
	assert.False(t, m.MetricsEnabled())
}
