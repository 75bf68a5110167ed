package event

import (
	"context"
	"math"
	"time"

	"github.com/DioGolang/GoPlaces/pkg/events"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

type retryingDispatcher struct {
	next       events.EventDispatcher
	log        logger.Logger
	maxRetries int
	baseWait   time.Duration
}

// WrapExponentialBackoff retries failed publishes, doubling the wait each
// attempt, until maxRetries is exhausted or the context ends.
func WrapExponentialBackoff(
	log logger.Logger,
	maxRetries int,
	baseWait time.Duration,
	next events.EventDispatcher,
) events.EventDispatcher {
	return &retryingDispatcher{next: next, log: log, maxRetries: maxRetries, baseWait: baseWait}
}

func (d *retryingDispatcher) Dispatch(ctx context.Context, event events.Event) error {
	var err error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		err = d.next.Dispatch(ctx, event)
		if err == nil {
			return nil
		}
		if attempt < d.maxRetries {
			wait := d.baseWait * time.Duration(math.Pow(2, float64(attempt)))

			d.log.Warn(ctx, "Publish failed, retrying...",
				logger.String("event", event.GetName()),
				logger.Int("attempt", attempt+1),
				logger.Duration("wait", wait),
				logger.WithError(err),
			)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	d.log.Error(ctx, "Max retries reached, dropping event.",
		logger.String("event", event.GetName()),
		logger.WithError(err),
	)
	return err
}
