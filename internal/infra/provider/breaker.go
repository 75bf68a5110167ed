package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

type BreakerConfig struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// NewBreaker opens after a run of consecutive provider failures and lets a trial
// call through after OpenTimeout. Caller cancellations do not count as failures.
func NewBreaker(cfg BreakerConfig, log logger.Logger, m metrics.Metrics) *gobreaker.CircuitBreaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	m.SetBreakerState(cfg.Name, int(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.SetBreakerState(name, int(to))
			log.Warn(context.Background(), "provider circuit breaker changed state",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
