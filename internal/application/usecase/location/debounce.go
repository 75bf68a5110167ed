package location

import (
	"sync"
	"time"

	"github.com/DioGolang/GoPlaces/pkg/clock"
)

// debouncer owns a single pending timer. Every schedule or cancel bumps the
// generation, so a callback that lost a race with Stop can tell it is stale.
type debouncer struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	timer clock.Timer
	gen   uint64
}

func newDebouncer(clk clock.Clock, delay time.Duration) *debouncer {
	return &debouncer{clock: clk, delay: delay}
}

func (d *debouncer) schedule(fn func(gen uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn(gen)
	})
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

// current reports whether nothing was scheduled or cancelled since gen.
func (d *debouncer) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

func (d *debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
