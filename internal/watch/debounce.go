package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer delays a callback per id, restarting the delay whenever the
// same id is scheduled again before it fires.
type Debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer returns an empty Debouncer.
func NewDebouncer() *Debouncer {
	return &Debouncer{timers: make(map[string]*time.Timer)}
}

// Do schedules fn to run after delay unless Do is called again with the
// same id first. The id is forgotten before fn runs.
func (d *Debouncer) Do(id string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[id]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// A newer Do may have replaced this timer after it fired.
		if d.timers[id] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, id)
		d.mu.Unlock()
		fn()
	})
	d.timers[id] = t
}

// Pending returns the ids with a scheduled callback, sorted.
func (d *Debouncer) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.timers))
	for id := range d.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}
