package clock

import (
	"sort"
	"sync"
	"time"
)

// Mock is a manually advanced Clock. Timers fire synchronously inside Advance,
// in deadline order, outside the internal lock.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

type mockTimer struct {
	mock     *Mock
	deadline time.Time
	fn       func()
	ch       chan time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.schedule(d, nil, ch)
	return ch
}

func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	return m.schedule(d, f, nil)
}

// Pending reports how many timers are waiting to fire.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.timers, func(i, j int) bool {
			return m.timers[i].deadline.Before(m.timers[j].deadline)
		})
		if len(m.timers) == 0 || m.timers[0].deadline.After(target) {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.timers[0]
		m.timers = m.timers[1:]
		if t.deadline.After(m.now) {
			m.now = t.deadline
		}
		now := m.now
		m.mu.Unlock()

		if t.ch != nil {
			t.ch <- now
		}
		if t.fn != nil {
			t.fn()
		}
	}
}

func (m *Mock) schedule(d time.Duration, f func(), ch chan time.Time) *mockTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{mock: m, deadline: m.now.Add(d), fn: f, ch: ch}
	if d <= 0 && ch != nil {
		ch <- m.now
		return t
	}
	m.timers = append(m.timers, t)
	return t
}

func (t *mockTimer) Stop() bool {
	m := t.mock
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}
