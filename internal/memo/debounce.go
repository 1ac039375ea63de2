package memo

import (
	"sort"
	"sync"
	"time"
)

type pendingCall struct {
	timer *time.Timer
	gen   uint64
	fn    func()
}

// Debouncer delays calls per key; scheduling again before the delay runs out replaces the
// waiting call.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingCall
	closed  bool
	running sync.WaitGroup
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: make(map[string]*pendingCall)}
}

// Schedule runs fn after the delay unless key is scheduled again first. It reports false
// once the debouncer is closed.
func (d *Debouncer) Schedule(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	p := &pendingCall{gen: gen, fn: fn}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(key, gen) })
	d.pending[key] = p
	return true
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.gen != gen || d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	p.fn()
}

// Cancel drops the waiting call for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether a call for key is waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every waiting call now, in key order, on the calling goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	calls := make([]func(), 0, len(keys))
	for _, k := range keys {
		p := d.pending[k]
		p.timer.Stop()
		calls = append(calls, p.fn)
		delete(d.pending, k)
	}
	d.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
}

// Close drops waiting calls and waits for running ones.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	for k, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, k)
	}
	d.mu.Unlock()

	d.running.Wait()
}
