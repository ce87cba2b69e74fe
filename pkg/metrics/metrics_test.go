package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterInc(t *testing.T) {
	reg := NewRegistry()
	c := reg.NewCounter("test_requests_total", "Test requests.", "method")

	require.NoError(t, c.Inc("GET"))
	require.NoError(t, c.Inc("GET"))
	require.NoError(t, c.Inc("POST"))

	samples := c.Collect()
	require.Len(t, samples, 2)

	byMethod := map[string]float64{}
	for _, s := range samples {
		byMethod[s.Labels["method"]] = s.Value
	}
	assert.Equal(t, 2.0, byMethod["GET"])
	assert.Equal(t, 1.0, byMethod["POST"])
}

func TestCounterLabelCountMismatch(t *testing.T) {
	reg := NewRegistry()
	c := reg.NewCounter("test_total", "Test.", "a", "b")

	err := c.Inc("only-one")
	assert.ErrorIs(t, err, ErrLabelCountMismatch)
}

func TestGaugeSet(t *testing.T) {
	reg := NewRegistry()
	g := reg.NewGauge("test_stubs", "Registered stubs.")

	require.NoError(t, g.Set(5))
	require.NoError(t, g.Set(3))

	samples := g.Collect()
	require.Len(t, samples, 1)
	assert.Equal(t, 3.0, samples[0].Value)
}

func TestHandlerExposition(t *testing.T) {
	reg := NewRegistry()
	c := reg.NewCounter("stubd_requests_total", "Requests served.", "method", "outcome")
	require.NoError(t, c.Inc("GET", "matched"))

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	assert.Contains(t, out, "# HELP stubd_requests_total Requests served.")
	assert.Contains(t, out, "# TYPE stubd_requests_total counter")
	assert.Contains(t, out, `stubd_requests_total{method="GET",outcome="matched"} 1`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}
