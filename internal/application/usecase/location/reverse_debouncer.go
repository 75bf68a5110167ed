package location

import (
	"context"
	"time"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

const DefaultReverseDelay = 2 * time.Second

type ReverseResultFunc func(place entity.Place)

// ReverseGeocodeDebouncer waits until the map stops moving before looking up
// the pin under its centre.
type ReverseGeocodeDebouncer struct {
	ctx      context.Context
	lookup   ReverseGeocodeUseCase
	onResult ReverseResultFunc
	logger   logger.Logger
	debounce *debouncer
}

func NewReverseGeocodeDebouncer(
	ctx context.Context,
	lookup ReverseGeocodeUseCase,
	clk clock.Clock,
	delay time.Duration,
	onResult ReverseResultFunc,
	log logger.Logger,
) *ReverseGeocodeDebouncer {
	if delay <= 0 {
		delay = DefaultReverseDelay
	}
	return &ReverseGeocodeDebouncer{
		ctx:      ctx,
		lookup:   lookup,
		onResult: onResult,
		logger:   log.With(logger.String("component", "reverse_debouncer")),
		debounce: newDebouncer(clk, delay),
	}
}

func (r *ReverseGeocodeDebouncer) OnRegionChange(c entity.Coordinates) {
	r.debounce.schedule(func(gen uint64) {
		place := r.lookup.Lookup(r.ctx, c)
		if !r.debounce.current(gen) {
			r.logger.Debug(r.ctx, "discarding stale reverse geocode", logger.String("coordinates", c.String()))
			return
		}
		if r.onResult != nil {
			r.onResult(place)
		}
	})
}

func (r *ReverseGeocodeDebouncer) Cancel() {
	r.debounce.cancel()
}
