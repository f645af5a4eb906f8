package scheduler

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by hand. Tasks run only when Advance is called,
// which makes delayed behaviour observable in tests without sleeping.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

func NewManual() *Manual {
	return &Manual{}
}

type manualTask struct {
	owner   *Manual
	due     time.Duration
	delay   time.Duration
	f       func()
	fired   bool
	stopped bool
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{owner: m, due: m.now + d, delay: d, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Delays returns the delay requested for every task scheduled so far, in order.
func (m *Manual) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.delay
	}
	return out
}

// Pending returns the number of tasks that have neither run nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and synchronously runs every task that
// became due, in scheduling order.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	for _, t := range m.tasks {
		if !t.fired && !t.stopped && t.due <= m.now {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}
