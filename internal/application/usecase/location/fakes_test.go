package location

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DioGolang/GoPlaces/internal/application/port/outbound"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/events"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func testMetrics() metrics.Metrics {
	return metrics.NewPrometheusMetrics(prometheus.NewRegistry(), "location-test")
}

type providerCall struct {
	query  string
	box    entity.BoundingBox
	region string
}

// fakeProvider answers through respond and can be held on gate.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []providerCall
	done    int
	gate    chan struct{}
	respond func(query string, box entity.BoundingBox) ([]entity.Place, error)
}

func (f *fakeProvider) Search(ctx context.Context, query string, box entity.BoundingBox, region string) ([]entity.Place, error) {
	f.mu.Lock()
	f.calls = append(f.calls, providerCall{query: query, box: box, region: region})
	gate := f.gate
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.done++
		f.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.respond == nil {
		return nil, nil
	}
	return f.respond(query, box)
}

func (f *fakeProvider) recorded() []providerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]providerCall(nil), f.calls...)
}

func (f *fakeProvider) returned() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *fakeProvider) queries() []string {
	calls := f.recorded()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.query
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	added   []entity.Place
	nearest entity.Place
	found   bool
	err     error
}

func (f *fakeIndex) Add(_ context.Context, places []entity.Place) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, places...)
	return nil
}

func (f *fakeIndex) Nearest(_ context.Context, _ entity.Coordinates, _ float64) (entity.Place, bool, error) {
	return f.nearest, f.found, f.err
}

func (f *fakeIndex) addedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.added)
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeDispatcher) Dispatch(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeDispatcher) dispatched() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.events...)
}

type fakeGeocoder struct {
	mu    sync.Mutex
	calls int
	addr  outbound.Address
	err   error
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (outbound.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.addr, f.err
}

// stubResolve records queries and answers with a fixed list.
type stubResolve struct {
	mu      sync.Mutex
	queries []string
	places  []entity.Place
	err     error
	during  func(query string)
}

func (s *stubResolve) Resolve(ctx context.Context, query string) ([]entity.Place, error) {
	res, err := s.ResolveDetailed(ctx, query)
	return res.Places, err
}

func (s *stubResolve) ResolveDetailed(_ context.Context, query string) (Resolution, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	during := s.during
	s.mu.Unlock()
	if during != nil {
		during(query)
	}
	return Resolution{Query: query, Places: s.places, Source: entity.TierExact.String()}, s.err
}

func (s *stubResolve) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

type stubLookup struct {
	mu     sync.Mutex
	coords []entity.Coordinates
}

func (s *stubLookup) Lookup(_ context.Context, c entity.Coordinates) entity.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coords = append(s.coords, c)
	return FallbackPlace(c)
}

func (s *stubLookup) looked() []entity.Coordinates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Coordinates(nil), s.coords...)
}

type recordingMetrics struct {
	metrics.Metrics
	mu       sync.Mutex
	useCases []string
	success  []bool
}

func (r *recordingMetrics) RecordUseCaseExecution(name string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.useCases = append(r.useCases, name)
	r.success = append(r.success, success)
}

func universityOfColombo() entity.Place {
	return entity.NewPlace(entity.PlaceParams{
		ID:               "ChIJ-university-of-colombo",
		Name:             "University of Colombo",
		FormattedAddress: "94 Cumaratunga Munidasa Mawatha, Colombo 00300, Sri Lanka",
		Coordinates:      entity.Coordinates{Lat: 6.9022, Lng: 79.8607},
		Types:            []string{"university"},
	})
}

func kandyTemple() entity.Place {
	return entity.NewPlace(entity.PlaceParams{
		ID:               "ChIJ-temple-of-the-tooth",
		Name:             "Temple of the Sacred Tooth Relic",
		FormattedAddress: "Sri Dalada Veediya, Kandy 20000, Sri Lanka",
		Coordinates:      entity.Coordinates{Lat: 7.2936, Lng: 80.6413},
		Types:            []string{"place_of_worship"},
	})
}
