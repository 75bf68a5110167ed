package location

import (
	"context"
	"time"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

type EngineOptions struct {
	SearchDelay     time.Duration
	ReverseDelay    time.Duration
	OnSearchResults SearchResultsFunc
	OnReverseResult ReverseResultFunc
	Clock           clock.Clock
}

// Engine is the surface a location-picking session talks to: direct
// resolution plus the two debounced streams. One Engine per session.
type Engine struct {
	resolver ResolveUseCase
	search   *SearchDebouncer
	reverse  *ReverseGeocodeDebouncer
	cancel   context.CancelFunc
}

func NewEngine(
	ctx context.Context,
	resolver ResolveUseCase,
	reverse ReverseGeocodeUseCase,
	log logger.Logger,
	opts EngineOptions,
) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		resolver: resolver,
		search:   NewSearchDebouncer(ctx, resolver, opts.Clock, opts.SearchDelay, opts.OnSearchResults, log),
		reverse:  NewReverseGeocodeDebouncer(ctx, reverse, opts.Clock, opts.ReverseDelay, opts.OnReverseResult, log),
		cancel:   cancel,
	}
}

func (e *Engine) Resolve(ctx context.Context, query string) ([]entity.Place, error) {
	return e.resolver.Resolve(ctx, query)
}

func (e *Engine) ScheduleSearch(query string) {
	e.search.OnKeystroke(query)
}

func (e *Engine) ScheduleReverseGeocode(c entity.Coordinates) {
	e.reverse.OnRegionChange(c)
}

// Close drops pending timers and abandons in-flight debounced work.
func (e *Engine) Close() {
	e.search.Cancel()
	e.reverse.Cancel()
	e.cancel()
}
