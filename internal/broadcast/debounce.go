package broadcast

import (
	"sync"
	"time"
)

type pendingJob struct {
	timer    *time.Timer
	deadline time.Time
	// followUp is when the job has to run once more, zero if it doesn't.
	followUp time.Time
	fn       func()
}

// Debouncer coalesces jobs scheduled under the same key. Jobs carry no
// payload: they read the current state when they fire, so one run covers
// every request whose change is visible by then.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]*pendingJob
	stopped bool
	now     func() time.Time
}

// NewDebouncer returns a debouncer that runs a job window after the change
// it was scheduled for.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingJob),
		now:     time.Now,
	}
}

// Schedule asks for fn to run once the change it reports is visible, which
// is after the given delay. A pending job for key that fires late enough
// absorbs the request. Otherwise the pending job still fires on time and
// runs again a window after the new change. It reports whether the request
// caused a run.
func (d *Debouncer) Schedule(key string, after time.Duration, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	visible := d.now().Add(after)
	deadline := visible.Add(d.window)

	p, ok := d.pending[key]
	if !ok {
		p = &pendingJob{deadline: deadline, fn: fn}
		p.timer = time.AfterFunc(deadline.Sub(d.now()), func() { d.fire(key, p) })
		d.pending[key] = p
		return true
	}
	p.fn = fn
	if !p.deadline.Before(visible) {
		return false
	}
	if deadline.After(p.followUp) {
		p.followUp = deadline
	}
	return true
}

func (d *Debouncer) fire(key string, p *pendingJob) {
	d.mu.Lock()
	if d.stopped || d.pending[key] != p {
		d.mu.Unlock()
		return
	}
	fn := p.fn
	if p.followUp.IsZero() {
		delete(d.pending, key)
	} else {
		p.deadline, p.followUp = p.followUp, time.Time{}
		p.timer.Reset(p.deadline.Sub(d.now()))
	}
	d.mu.Unlock()
	fn()
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels all pending jobs. Jobs scheduled afterwards never run.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}
