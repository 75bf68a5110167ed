package metrics

import "time"

type Metrics interface {
	// Business
	RecordResolution(tier string, results int)
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)

	// Infrastructure (HTTP & provider)
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
	ObserveProviderCall(operation, status string, duration time.Duration)

	// Performance and Resilience
	IncCacheHit(cacheType string)
	IncCacheMiss(cacheType string)
	ObserveRateLimitWait(wait time.Duration)
	SetBreakerState(name string, state int)
}
