package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

type Prometheus struct {
	resolutions     *prometheus.CounterVec
	resolvedPlaces  *prometheus.HistogramVec
	useCaseTotal    *prometheus.CounterVec
	useCaseDuration *prometheus.HistogramVec
	httpDuration    *prometheus.HistogramVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	rateLimitWait   prometheus.Histogram
	breakerState    *prometheus.GaugeVec
}

func NewPrometheusMetrics(reg prometheus.Registerer, serviceName string) *Prometheus {
	constLabels := prometheus.Labels{"service": serviceName}
	m := &Prometheus{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "places_resolutions_total",
			Help:        "Resolutions by the tier that produced the answer.",
			ConstLabels: constLabels,
		}, []string{"tier"}),
		resolvedPlaces: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "places_resolution_results",
			Help:        "Number of places returned per resolution.",
			Buckets:     []float64{0, 1, 2, 5, 10, 20},
			ConstLabels: constLabels,
		}, []string{"tier"}),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_usecase_total",
			Help:        "Total number of Use Case executions.",
			ConstLabels: constLabels,
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_usecase_duration_seconds",
			Help:        "Use Case execution latency.",
			Buckets:     latencyBuckets,
			ConstLabels: constLabels,
		}, []string{"use_case", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_http_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     latencyBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path", "status_code"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "places_provider_calls_total",
			Help:        "Outbound calls to the place provider.",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "places_provider_duration_seconds",
			Help:        "Latency of outbound provider calls.",
			Buckets:     latencyBuckets,
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_cache_hits_total",
			Help:        "Total cache hits.",
			ConstLabels: constLabels,
		}, []string{"cache_type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_cache_misses_total",
			Help:        "Total cache misses.",
			ConstLabels: constLabels,
		}, []string{"cache_type"}),
		rateLimitWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "places_rate_limit_wait_seconds",
			Help:        "Time callers spent waiting for a provider slot.",
			Buckets:     []float64{.01, .05, .1, .25, .5, 1, 2, 5},
			ConstLabels: constLabels,
		}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "places_breaker_state",
			Help:        "Circuit breaker state (0 closed, 1 half-open, 2 open).",
			ConstLabels: constLabels,
		}, []string{"name"}),
	}

	reg.MustRegister(
		m.resolutions,
		m.resolvedPlaces,
		m.useCaseTotal,
		m.useCaseDuration,
		m.httpDuration,
		m.providerCalls,
		m.providerLatency,
		m.cacheHits,
		m.cacheMisses,
		m.rateLimitWait,
		m.breakerState,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func (p *Prometheus) RecordResolution(tier string, results int) {
	p.resolutions.WithLabelValues(tier).Inc()
	p.resolvedPlaces.WithLabelValues(tier).Observe(float64(results))
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.useCaseTotal.WithLabelValues(useCase, status).Inc()
	p.useCaseDuration.WithLabelValues(useCase, status).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}

func (p *Prometheus) ObserveProviderCall(operation, status string, duration time.Duration) {
	p.providerCalls.WithLabelValues(operation, status).Inc()
	p.providerLatency.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func (p *Prometheus) IncCacheHit(cacheType string) {
	p.cacheHits.WithLabelValues(cacheType).Inc()
}

func (p *Prometheus) IncCacheMiss(cacheType string) {
	p.cacheMisses.WithLabelValues(cacheType).Inc()
}

func (p *Prometheus) ObserveRateLimitWait(wait time.Duration) {
	p.rateLimitWait.Observe(wait.Seconds())
}

func (p *Prometheus) SetBreakerState(name string, state int) {
	p.breakerState.WithLabelValues(name).Set(float64(state))
}
