package watcher

import (
	"sync"
	"time"
)

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// Debouncer delays work per key until events for that key settle.
type Debouncer struct {
	delay   time.Duration
	pending map[string]*pendingCall
	stopped bool
	mu      sync.Mutex
	// firing tracks callbacks that left the map through their own timer.
	firing sync.WaitGroup
}

// NewDebouncer creates a new debouncer with the specified delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Process schedules fn to run after the delay. If an event for the same key
// arrives within the delay window, the previous timer is cancelled and a new
// one is started. Calls after Flush are dropped.
func (d *Debouncer) Process(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if call, exists := d.pending[key]; exists {
		call.timer.Stop()
	}

	call := &pendingCall{fn: fn}
	call.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A newer call, or Flush, may have claimed this entry between firing
		// and locking.
		if d.pending[key] != call {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.firing.Add(1)
		d.mu.Unlock()

		defer d.firing.Done()
		fn()
	})
	d.pending[key] = call
}

// Flush stops every pending timer, runs the waiting callbacks immediately and
// refuses further work. Each callback runs exactly once, either here or from
// its own timer, and all of them have returned when Flush does. Flush
// returns how many callbacks it ran itself.
func (d *Debouncer) Flush() int {
	d.mu.Lock()
	d.stopped = true
	calls := make([]*pendingCall, 0, len(d.pending))
	for key, call := range d.pending {
		call.timer.Stop()
		calls = append(calls, call)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, call := range calls {
		call.fn()
	}
	d.firing.Wait()
	return len(calls)
}

// Pending returns the number of keys waiting for their timer.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
