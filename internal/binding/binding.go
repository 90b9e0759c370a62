// Package binding connects a parameter handle to UI-local state. Edits show
// up immediately and are committed to the session after a debounce delay.
package binding

import (
	"context"
	"sync"
	"time"

	"github.com/jask/paramdeck/internal/parameter"
	"github.com/jask/paramdeck/internal/scheduler"
)

const DefaultDebounceTimeout = 1000 * time.Millisecond

// ExecState reports whether a session is customizing.
type ExecState interface {
	Executing(sessionID string) bool
}

type Options struct {
	// AcceptRejectMode stages commits until they are accepted explicitly and
	// commits without delay.
	AcceptRejectMode bool
	// DebounceTimeout applies outside accept/reject mode. Zero means
	// DefaultDebounceTimeout.
	DebounceTimeout   time.Duration
	DisableWhileDirty bool
	// OnError receives commit failures; they would otherwise be lost on the
	// timer goroutine.
	OnError func(error)
	// OnCommit is called after every commit attempt.
	OnCommit func(value string, accepted bool)
	Context  context.Context
}

// Binding is the UI side of one parameter.
type Binding struct {
	handle *parameter.Parameter
	exec   ExecState
	sched  *scheduler.Debouncer
	opts   Options
	key    string

	mu    sync.Mutex
	value string
	// lastUI is the handle ui value the binding last saw or set itself;
	// only changes away from it resync the local value.
	lastUI  string
	unwatch func()
}

func New(handle *parameter.Parameter, exec ExecState, sched *scheduler.Debouncer, opts Options) *Binding {
	if opts.DebounceTimeout <= 0 {
		opts.DebounceTimeout = DefaultDebounceTimeout
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	ui := handle.State().UIValue
	b := &Binding{
		handle: handle,
		exec:   exec,
		sched:  sched,
		opts:   opts,
		key:    handle.SessionID() + "/" + handle.Definition().ID,
		value:  ui,
		lastUI: ui,
	}
	b.unwatch = handle.Watch(func(st parameter.State) {
		b.mu.Lock()
		if st.UIValue != b.lastUI {
			b.lastUI = st.UIValue
			b.value = st.UIValue
		}
		b.mu.Unlock()
	})
	return b
}

func (b *Binding) Handle() *parameter.Parameter { return b.handle }

// Value is the value the control should show.
func (b *Binding) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Delay is the commit delay used by HandleChange.
func (b *Binding) Delay() time.Duration {
	if b.opts.AcceptRejectMode {
		return 0
	}
	return b.opts.DebounceTimeout
}

func (b *Binding) HandleChange(v string) { b.HandleChangeAfter(v, b.Delay()) }

// HandleChangeAfter shows v at once and replaces any pending commit with one
// that runs after d.
func (b *Binding) HandleChangeAfter(v string, d time.Duration) {
	b.mu.Lock()
	b.value = v
	b.mu.Unlock()
	b.sched.Schedule(b.key, d, func() { b.commit(v) })
}

// Pending reports whether a commit is waiting for its delay.
func (b *Binding) Pending() bool { return b.sched.Pending(b.key) }

// Flush commits a pending change immediately.
func (b *Binding) Flush() bool { return b.sched.Flush(b.key) }

// Settle flushes a pending change and waits for any commit already running
// on the timer goroutine.
func (b *Binding) Settle() {
	b.sched.Flush(b.key)
	b.sched.Wait(b.key)
}

func (b *Binding) commit(v string) {
	// our own write must not overwrite a newer local edit
	b.mu.Lock()
	b.lastUI = v
	b.mu.Unlock()

	accepted := b.handle.SetUIValue(v)
	if accepted {
		if _, err := b.handle.Execute(b.opts.Context, !b.opts.AcceptRejectMode); err != nil && b.opts.OnError != nil {
			b.opts.OnError(err)
		}
	} else {
		// rejected values snap back to what the handle holds
		ui := b.handle.State().UIValue
		b.mu.Lock()
		b.lastUI = ui
		b.value = ui
		b.mu.Unlock()
	}
	if b.opts.OnCommit != nil {
		b.opts.OnCommit(v, accepted)
	}
}

// CanCancel reports whether Cancel would do anything.
func (b *Binding) CanCancel() bool {
	return b.opts.AcceptRejectMode && b.handle.State().Dirty() && !b.exec.Executing(b.handle.SessionID())
}

// Cancel reverts to the committed value.
func (b *Binding) Cancel() bool {
	if !b.CanCancel() {
		return false
	}
	b.HandleChangeAfter(b.handle.State().ExecValue, 0)
	return true
}

// Disabled reports whether the control should refuse input.
func (b *Binding) Disabled() bool {
	if b.opts.DisableWhileDirty && b.handle.State().Dirty() {
		return true
	}
	return b.exec.Executing(b.handle.SessionID())
}

// Close drops any pending commit and stops following the handle.
func (b *Binding) Close() {
	b.sched.Cancel(b.key)
	b.unwatch()
}
