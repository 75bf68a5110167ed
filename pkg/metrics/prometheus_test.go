package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_RecordsResolutionsAndCache(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry(), "places-test")

	m.RecordResolution("exact", 1)
	m.RecordResolution("exact", 3)
	m.RecordResolution("curated", 0)
	m.IncCacheHit("search")
	m.IncCacheMiss("search")
	m.IncCacheMiss("search")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("curated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("search")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses.WithLabelValues("search")))
}

func TestPrometheus_UseCaseStatusLabel(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry(), "places-test")

	m.RecordUseCaseExecution("ResolvePlaces", true, 10*time.Millisecond)
	m.RecordUseCaseExecution("ResolvePlaces", false, 10*time.Millisecond)
	m.ObserveProviderCall("search_text", "ok", 20*time.Millisecond)
	m.SetBreakerState("places", 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.useCaseTotal.WithLabelValues("ResolvePlaces", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.useCaseTotal.WithLabelValues("ResolvePlaces", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues("search_text", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.breakerState.WithLabelValues("places")))
}
