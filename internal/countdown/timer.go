// Package countdown provides a restartable ticking timer with an expiry
// callback. It is the single abstraction behind every recurring or delayed
// callback of the checkout flow: the payment code countdown, the copy label
// revert and status polling.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Timer counts down a number of ticks. At most one run is active at a time.
//
// Callbacks run on the timer's goroutine without any timer lock held. They
// must not block for long, and a callback that arrives after Stop or a
// restart is never delivered.
type Timer struct {
	clock    clock.WithTicker
	interval time.Duration

	mu      sync.Mutex
	current *run
}

type run struct {
	ticker clock.Ticker
	stop   chan struct{}
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval sets the tick interval. The default is one second.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// New creates a stopped timer driven by clk.
func New(clk clock.WithTicker, opts ...Option) *Timer {
	t := &Timer{clock: clk, interval: time.Second}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins counting down total ticks. onTick receives the remaining
// count after every tick, down to zero; onExpire fires exactly once when the
// count reaches zero, after which the run ends. Starting while a run is
// active stops that run first. A non-positive total expires on the next
// scheduling point without ticking.
func (t *Timer) Start(total int, onTick func(remaining int), onExpire func()) {
	t.mu.Lock()
	t.stopLocked()
	r := &run{
		ticker: t.clock.NewTicker(t.interval),
		stop:   make(chan struct{}),
	}
	t.current = r
	t.mu.Unlock()

	go t.loop(r, total, onTick, onExpire)
}

// Stop ends the active run, if any. It is safe to call at any time.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

// Running reports whether a run is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil
}

func (t *Timer) stopLocked() {
	if t.current == nil {
		return
	}
	t.current.ticker.Stop()
	close(t.current.stop)
	t.current = nil
}

func (t *Timer) loop(r *run, remaining int, onTick func(int), onExpire func()) {
	defer r.ticker.Stop()

	for remaining > 0 {
		select {
		case <-r.stop:
			return
		case <-r.ticker.C():
		}
		if !t.isCurrent(r) {
			return
		}
		remaining--
		if onTick != nil {
			onTick(remaining)
		}
	}

	if t.finish(r) && onExpire != nil {
		onExpire()
	}
}

func (t *Timer) isCurrent(r *run) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current == r
}

// finish retires r if it is still the active run.
func (t *Timer) finish(r *run) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != r {
		return false
	}
	t.current = nil
	r.ticker.Stop()
	return true
}

// Display renders a remaining second count as mm:ss.
func Display(remaining int) string {
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
}
