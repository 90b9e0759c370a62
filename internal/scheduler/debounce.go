package scheduler

import (
	"sync"
	"time"
)

type task struct {
	gen   uint64
	timer *time.Timer
	fn    func()
}

// Debouncer runs at most one pending task per key. Scheduling a key again
// replaces its pending task.
type Debouncer struct {
	mu      sync.Mutex
	idle    *sync.Cond
	gen     uint64
	tasks   map[string]*task
	running map[string]int
	stopped bool
}

func NewDebouncer() *Debouncer {
	d := &Debouncer{tasks: map[string]*task{}, running: map[string]int{}}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Schedule runs fn after delay unless key is rescheduled or cancelled first.
// A zero delay still runs fn on a timer goroutine.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.clear(key)
	d.gen++
	t := &task{gen: d.gen, fn: fn}
	t.timer = time.AfterFunc(delay, func() { d.fire(key, t.gen) })
	d.tasks[key] = t
}

// Cancel drops the pending task for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clear(key)
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tasks[key]
	return ok
}

// Flush runs the pending task for key now, on the calling goroutine.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	t, ok := d.tasks[key]
	if ok {
		d.clear(key)
		d.running[key]++
	}
	d.mu.Unlock()
	if ok {
		d.run(key, t.fn)
	}
	return ok
}

// Wait blocks until no task for key is running. Pending tasks are not
// waited for; Flush them first.
func (d *Debouncer) Wait(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.running[key] > 0 {
		d.idle.Wait()
	}
}

// Stop cancels everything; later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.tasks {
		d.clear(key)
	}
	d.stopped = true
}

// clear must be called with mu held.
func (d *Debouncer) clear(key string) bool {
	t, ok := d.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(d.tasks, key)
	return true
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	t, ok := d.tasks[key]
	// a timer that lost the race with Stop still fires; the generation check
	// keeps it from running a replaced task
	if !ok || t.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.tasks, key)
	d.running[key]++
	d.mu.Unlock()
	d.run(key, t.fn)
}

// run calls fn; running[key] must already count it.
func (d *Debouncer) run(key string, fn func()) {
	defer func() {
		d.mu.Lock()
		if d.running[key]--; d.running[key] <= 0 {
			delete(d.running, key)
		}
		d.idle.Broadcast()
		d.mu.Unlock()
	}()
	fn()
}
