package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v5"
	healthRabbit "github.com/hellofresh/health-go/v5/checks/rabbitmq"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

type healthOptions struct {
	checks []*health.Config
}

type HealthOption func(*healthOptions)

// WithRedis checks the place index backend.
func WithRedis(rdb *redis.Client) HealthOption {
	return func(o *healthOptions) {
		if rdb == nil {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:    "redis",
			Timeout: 3 * time.Second,
			// Pin snapping degrades to plain geocoding without redis.
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		})
	}
}

func WithRabbitMQ(dsn string) HealthOption {
	return func(o *healthOptions) {
		if dsn == "" {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:      "rabbitmq",
			Timeout:   3 * time.Second,
			SkipOnErr: true,
			Check: healthRabbit.New(healthRabbit.Config{
				DSN: dsn,
			}),
		})
	}
}

// WithBreaker reports an open provider breaker. Search still answers from
// the cache and the curated list while it is open.
func WithBreaker(cb *gobreaker.CircuitBreaker) HealthOption {
	return func(o *healthOptions) {
		if cb == nil {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:      "breaker." + cb.Name(),
			Timeout:   time.Second,
			SkipOnErr: true,
			Check: func(context.Context) error {
				if state := cb.State(); state == gobreaker.StateOpen {
					return fmt.Errorf("circuit %s is %s", cb.Name(), state)
				}
				return nil
			},
		})
	}
}

// NewHealthHandler reports the service plus whichever optional backends were
// configured. A missing backend is simply not checked.
func NewHealthHandler(serviceName, version string, opts ...HealthOption) http.Handler {
	options := &healthOptions{
		checks: make([]*health.Config, 0),
	}

	for _, opt := range opts {
		opt(options)
	}

	h, _ := health.New(health.WithComponent(health.Component{
		Name:    serviceName,
		Version: version,
	}))

	for _, check := range options.checks {
		h.Register(*check)
	}

	return h.Handler()
}
