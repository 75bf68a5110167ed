package ratelimit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

const DefaultMinInterval = time.Second

var ErrReservationRefused = errors.New("rate limiter refused reservation")

// Limiter spaces outbound provider calls at least minInterval apart across
// every caller sharing it. A slot is stamped when it is reserved, not when the
// call completes, so a slow response never lets the next call start early.
type Limiter struct {
	limiter *rate.Limiter
	clock   clock.Clock
	logger  logger.Logger
	metrics metrics.Metrics
}

func NewLimiter(minInterval time.Duration, clk clock.Clock, log logger.Logger, m metrics.Metrics) *Limiter {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		clock:   clk,
		logger:  log,
		metrics: m,
	}
}

// Wait blocks until the caller owns the next slot. On cancellation the slot
// is handed back.
func (l *Limiter) Wait(ctx context.Context) error {
	now := l.clock.Now()
	r := l.limiter.ReserveN(now, 1)
	if !r.OK() {
		return ErrReservationRefused
	}

	delay := r.DelayFrom(now)
	l.metrics.ObserveRateLimitWait(delay)
	if delay <= 0 {
		return nil
	}

	l.logger.Debug(ctx, "rate limiting provider call", logger.Duration("wait", delay))
	select {
	case <-l.clock.After(delay):
		return nil
	case <-ctx.Done():
		r.CancelAt(l.clock.Now())
		return ctx.Err()
	}
}
