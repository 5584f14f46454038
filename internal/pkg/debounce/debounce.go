package debounce

import (
	"sync"
	"time"
)

type timer interface {
	Stop() bool
}

func afterFunc(delay time.Duration, f func()) timer {
	return time.AfterFunc(delay, f)
}

// Debouncer coalesces bursts of Trigger calls for the same key into a single
// callback that fires once the key has been quiet for the configured delay.
type Debouncer struct {
	delay     time.Duration
	fn        func(key string)
	afterFunc func(time.Duration, func()) timer
	mu        sync.Mutex
	timers    map[string]timer
	closed    bool
}

func New(delay time.Duration, fn func(key string)) *Debouncer {
	return &Debouncer{
		delay:     delay,
		fn:        fn,
		afterFunc: afterFunc,
		timers:    make(map[string]timer),
	}
}

// Trigger schedules fn(key), pushing back any pending call for key.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	var t timer
	t = d.afterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while Trigger replaced it must not drop its successor.
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		closed := d.closed
		d.mu.Unlock()

		if !closed {
			d.fn(key)
		}
	})
	d.timers[key] = t
}

// Pending returns the number of keys waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels all pending calls. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
