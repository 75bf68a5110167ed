package location

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/DioGolang/GoPlaces/internal/application/port/outbound"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/events"
	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
	tracing "github.com/DioGolang/GoPlaces/pkg/otel"
)

const (
	searchCacheType = "search"
	sideEffectWait  = 5 * time.Second
)

type ResolverOptions struct {
	Region     Region
	Normalizer *Normalizer
	Curated    *CuratedDataset
	// StrictBounds drops provider results outside the tier's box.
	StrictBounds bool
	// Index and Dispatcher are optional.
	Index      outbound.PlaceIndex
	Dispatcher events.EventDispatcher
	Clock      clock.Clock
}

// Resolver turns free text into places through an ordered chain of tiers,
// consulting and populating the search cache.
type Resolver struct {
	provider     outbound.PlaceProvider
	cache        outbound.SearchCache
	normalizer   *Normalizer
	curated      *CuratedDataset
	region       Region
	strictBounds bool
	index        outbound.PlaceIndex
	dispatcher   events.EventDispatcher
	clock        clock.Clock
	logger       logger.Logger
	metrics      metrics.Metrics

	flights  singleflight.Group
	mu       sync.Mutex
	inflight map[string]*flightState
	tiers    []tierStrategy
}

// flightState counts the callers waiting on one key. The flight's context is
// cancelled once the last of them leaves.
type flightState struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

type tierQuery struct {
	raw      string
	key      string
	enhanced string
	// widened is enhanced plus the primary city, unless the query already
	// names a known city.
	widened      string
	mentionsCity bool
}

type tierResult struct {
	places []entity.Place
	failed bool
}

type tierStrategy struct {
	tier entity.SearchTier
	run  func(ctx context.Context, q tierQuery) tierResult
}

func NewResolver(
	provider outbound.PlaceProvider,
	cache outbound.SearchCache,
	log logger.Logger,
	m metrics.Metrics,
	opts ResolverOptions,
) *Resolver {
	if opts.Normalizer == nil {
		opts.Normalizer = NewNormalizer()
	}
	if opts.Curated == nil {
		opts.Curated = DefaultCuratedDataset()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Region.Code == "" {
		opts.Region = DefaultRegion()
	}

	r := &Resolver{
		provider:     provider,
		cache:        cache,
		normalizer:   opts.Normalizer,
		curated:      opts.Curated,
		region:       opts.Region,
		strictBounds: opts.StrictBounds,
		index:        opts.Index,
		dispatcher:   opts.Dispatcher,
		clock:        opts.Clock,
		logger:       log.With(logger.String("component", "resolver")),
		metrics:      m,
		inflight:     make(map[string]*flightState),
	}

	r.tiers = []tierStrategy{
		r.providerTier(entity.TierExact, r.region.Metro, func(q tierQuery) (string, bool) {
			return q.enhanced, true
		}),
		r.providerTier(entity.TierCityContext, r.region.Province, func(q tierQuery) (string, bool) {
			return q.widened, !q.mentionsCity
		}),
		r.providerTier(entity.TierBroad, r.region.National, func(q tierQuery) (string, bool) {
			return q.widened, true
		}),
		{tier: entity.TierCurated, run: func(_ context.Context, q tierQuery) tierResult {
			return tierResult{places: r.curated.Match(q.raw)}
		}},
	}
	return r
}

// CacheKey is the trimmed, lower-cased original query.
func CacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (r *Resolver) Resolve(ctx context.Context, query string) ([]entity.Place, error) {
	res, err := r.ResolveDetailed(ctx, query)
	return res.Places, err
}

// ResolveDetailed never reports provider failures; the only error is the
// caller's own context error. Concurrent calls for the same cache key share
// one pass through the tiers, which is abandoned when every caller gives up.
func (r *Resolver) ResolveDetailed(ctx context.Context, query string) (Resolution, error) {
	key := CacheKey(query)
	if key == "" {
		return Resolution{Query: query, Places: []entity.Place{}}, nil
	}

	if cached, ok := r.cache.Get(key); ok {
		r.metrics.IncCacheHit(searchCacheType)
		r.logger.Debug(ctx, "search cache hit",
			logger.String("key", key),
			logger.Int("results", len(cached)),
		)
		return Resolution{Query: query, Places: cached, Source: SourceCache}, nil
	}
	r.metrics.IncCacheMiss(searchCacheType)

	st := r.join(ctx, key)
	ch := r.flights.DoChan(key, func() (interface{}, error) {
		return r.resolveFresh(st.ctx, query, key), nil
	})

	select {
	case <-ctx.Done():
		r.leave(key, st, true)
		return Resolution{Query: query, Places: []entity.Place{}}, ctx.Err()
	case out := <-ch:
		r.leave(key, st, false)
		res := out.Val.(Resolution)
		res.Query = query
		res.Places = slices.Clone(res.Places)
		return res, nil
	}
}

// join registers a waiter for key. The flight context keeps the first
// caller's values but not its cancellation; only leave cancels it.
func (r *Resolver) join(ctx context.Context, key string) *flightState {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.inflight[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		st = &flightState{ctx: fctx, cancel: cancel}
		r.inflight[key] = st
	}
	st.waiters++
	return st
}

// leave drops a waiter. When the last one abandons a running flight, the
// flight is forgotten so the next caller for key starts a fresh one.
func (r *Resolver) leave(key string, st *flightState, abandoned bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st.waiters--
	if st.waiters > 0 {
		return
	}
	if r.inflight[key] == st {
		delete(r.inflight, key)
	}
	if abandoned {
		r.flights.Forget(key)
	}
	st.cancel()
}

func (r *Resolver) resolveFresh(ctx context.Context, raw, key string) Resolution {
	ctx, span := tracing.Tracer().Start(ctx, "location.Resolve",
		trace.WithAttributes(attribute.String("query.key", key)))
	defer span.End()

	// Another flight may have filled the entry between our miss and now.
	if cached, ok := r.cache.Get(key); ok {
		span.SetAttributes(attribute.String("resolution.source", SourceCache))
		return Resolution{Places: cached, Source: SourceCache}
	}

	enhanced := r.normalizer.Normalize(raw)
	q := tierQuery{
		raw:          raw,
		key:          key,
		enhanced:     enhanced,
		widened:      enhanced,
		mentionsCity: r.region.MentionsKnownCity(key),
	}
	if !q.mentionsCity {
		q.widened = enhanced + " " + r.region.PrimaryCity
	}

	res := Resolution{Places: []entity.Place{}}
	for _, strategy := range r.tiers {
		if ctx.Err() != nil {
			break
		}
		out := strategy.run(ctx, q)
		if out.failed {
			res.Degraded = true
		}
		if len(out.places) > 0 || strategy.tier == entity.TierCurated {
			if out.places != nil {
				res.Places = out.places
			}
			res.Source = strategy.tier.String()
			break
		}
	}

	// Every caller left; a partial answer must not be cached.
	if ctx.Err() != nil {
		span.SetAttributes(attribute.Bool("resolution.abandoned", true))
		r.logger.Debug(ctx, "resolution abandoned by all callers", logger.String("key", key))
		return Resolution{Places: []entity.Place{}}
	}

	r.cache.Set(key, res.Places)
	r.metrics.RecordResolution(res.Source, len(res.Places))
	span.SetAttributes(
		attribute.String("resolution.source", res.Source),
		attribute.Int("resolution.results", len(res.Places)),
		attribute.Bool("resolution.degraded", res.Degraded),
	)
	r.logger.Info(ctx, "query resolved",
		logger.String("key", key),
		logger.String("enhanced", enhanced),
		logger.String("source", res.Source),
		logger.Int("results", len(res.Places)),
		logger.Bool("degraded", res.Degraded),
	)

	r.recordSideEffects(ctx, key, res)
	return res
}

func (r *Resolver) providerTier(
	tier entity.SearchTier,
	box entity.BoundingBox,
	text func(q tierQuery) (string, bool),
) tierStrategy {
	return tierStrategy{tier: tier, run: func(ctx context.Context, q tierQuery) tierResult {
		query, ok := text(q)
		if !ok {
			r.logger.Debug(ctx, "tier skipped", logger.String("tier", tier.String()), logger.String("key", q.key))
			return tierResult{}
		}

		ctx, span := tracing.Tracer().Start(ctx, "location.Tier",
			trace.WithAttributes(
				attribute.String("tier", tier.String()),
				attribute.String("query.text", query),
			))
		defer span.End()

		places, err := r.provider.Search(ctx, query, box, r.region.Code)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "provider search failed")
			r.logger.Warn(ctx, "provider tier failed, falling through",
				logger.String("tier", tier.String()),
				logger.String("query", query),
				logger.WithError(err),
			)
			return tierResult{failed: true}
		}

		if r.strictBounds {
			places = keepInside(places, box)
		}
		span.SetAttributes(attribute.Int("tier.results", len(places)))
		r.logger.Debug(ctx, "tier attempted",
			logger.String("tier", tier.String()),
			logger.String("query", query),
			logger.Int("results", len(places)),
		)
		return tierResult{places: places}
	}}
}

func keepInside(places []entity.Place, box entity.BoundingBox) []entity.Place {
	kept := make([]entity.Place, 0, len(places))
	for _, p := range places {
		if box.Contains(p.Coordinates()) {
			kept = append(kept, p)
		}
	}
	return kept
}

// recordSideEffects feeds the place index and publishes the analytics event
// in the background; neither may delay or fail the resolution.
func (r *Resolver) recordSideEffects(ctx context.Context, key string, res Resolution) {
	if r.index == nil && r.dispatcher == nil {
		return
	}
	evt := SearchResolved{
		ID:         uuid.NewString(),
		Query:      key,
		Source:     res.Source,
		Results:    len(res.Places),
		Degraded:   res.Degraded,
		ResolvedAt: r.clock.Now(),
	}
	fromProvider := res.Source != entity.TierCurated.String() && len(res.Places) > 0

	// The flight context is cancelled as soon as its callers have the answer.
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectWait)
		defer cancel()

		if r.index != nil && fromProvider {
			if err := r.index.Add(ctx, res.Places); err != nil {
				r.logger.Warn(ctx, "failed to index resolved places", logger.WithError(err))
			}
		}
		if r.dispatcher != nil {
			if err := r.dispatcher.Dispatch(ctx, evt); err != nil {
				r.logger.Warn(ctx, "failed to publish search event",
					logger.String("event_id", evt.ID),
					logger.WithError(err),
				)
			}
		}
	}()
}
