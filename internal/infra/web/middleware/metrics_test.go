package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

type httpObservation struct {
	method, path, status string
}

type recordingMetrics struct {
	metrics.Metrics
	seen []httpObservation
}

func (r *recordingMetrics) ObserveHTTPRequestDuration(method, path, statusCode string, _ float64) {
	r.seen = append(r.seen, httpObservation{method, path, statusCode})
}

func TestMetricsWrapper_LabelsByRoutePattern(t *testing.T) {
	m := &recordingMetrics{}
	r := chi.NewRouter()
	r.Use(MetricsWrapper(m, "/metrics"))
	r.Get("/api/v1/places/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {})

	for _, target := range []string{"/api/v1/places/search?q=uni", "/api/v1/places/search?q=kandy", "/metrics"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, []httpObservation{
		{"GET", "/api/v1/places/search", "200"},
		{"GET", "/api/v1/places/search", "200"},
	}, m.seen)
}

func TestGetStatusString(t *testing.T) {
	assert.Equal(t, "429", getStatusString(http.StatusTooManyRequests))
	assert.Equal(t, "700", getStatusString(700))
}
