package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

func TestEngine(t *testing.T) {
	clk := clock.NewMock(testEpoch)
	resolver := &stubResolve{places: []entity.Place{universityOfColombo()}}
	lookup := &stubLookup{}
	out := &emissions{}
	var (
		mu   sync.Mutex
		pins []entity.Place
	)

	e := NewEngine(context.Background(), resolver, lookup, logger.NewNop(), EngineOptions{
		SearchDelay:     time.Second,
		ReverseDelay:    500 * time.Millisecond,
		OnSearchResults: out.record,
		OnReverseResult: func(p entity.Place) {
			mu.Lock()
			defer mu.Unlock()
			pins = append(pins, p)
		},
		Clock: clk,
	})

	places, err := e.Resolve(context.Background(), "uni")
	require.NoError(t, err)
	assert.Len(t, places, 1)

	e.ScheduleSearch("uni")
	e.ScheduleReverseGeocode(fortStation)
	assert.Equal(t, 2, clk.Pending())

	clk.Advance(500 * time.Millisecond)
	mu.Lock()
	require.Len(t, pins, 1)
	assert.Equal(t, fortStation, pins[0].Coordinates())
	mu.Unlock()
	assert.Empty(t, out.all())

	clk.Advance(500 * time.Millisecond)
	require.Len(t, out.all(), 1)
	assert.Equal(t, []string{"uni", "uni"}, resolver.calls())

	e.ScheduleSearch("galle")
	e.ScheduleReverseGeocode(fortStation)
	e.Close()
	assert.Equal(t, 0, clk.Pending())

	clk.Advance(time.Minute)
	assert.Len(t, out.all(), 1)
	assert.Len(t, lookup.looked(), 1)
}
