package parameter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jask/paramdeck/internal/sdk"
)

// State is the dynamic part of a parameter handle.
type State struct {
	UIValue   string
	ExecValue string
}

// Dirty reports whether the shown value differs from the committed one.
func (s State) Dirty() bool { return s.UIValue != s.ExecValue }

// Tracker is told when a session customization starts and ends.
type Tracker interface {
	ExecutionStarted(sessionID string)
	ExecutionFinished(sessionID string, err error)
}

type nopTracker struct{}

func (nopTracker) ExecutionStarted(string)         {}
func (nopTracker) ExecutionFinished(string, error) {}

// Parameter wraps one session parameter with ui/exec bookkeeping.
type Parameter struct {
	session sdk.Session
	param   sdk.Parameter
	def     sdk.ParameterDefinition
	tracker Tracker

	mu       sync.Mutex
	state    State
	watchers map[int]func(State)
	nextID   int
}

// New builds a handle for parameter id of session. Tracker may be nil.
func New(session sdk.Session, id string, tracker Tracker) (*Parameter, error) {
	p, ok := session.Parameters()[id]
	if !ok {
		return nil, fmt.Errorf("session %s: no parameter %q", session.ID(), id)
	}
	if tracker == nil {
		tracker = nopTracker{}
	}
	v := p.Value()
	return &Parameter{
		session:  session,
		param:    p,
		def:      p.Definition(),
		tracker:  tracker,
		state:    State{UIValue: v, ExecValue: v},
		watchers: map[int]func(State){},
	}, nil
}

func (p *Parameter) Definition() sdk.ParameterDefinition { return p.def }

func (p *Parameter) SessionID() string { return p.session.ID() }

func (p *Parameter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetUIValue validates v and, when valid, makes it the ui value and writes it
// through to the session parameter.
func (p *Parameter) SetUIValue(v string) bool {
	if ok, _ := p.param.IsValid(v, false); !ok {
		return false
	}
	p.update(func(s *State) {
		s.UIValue = v
		p.param.SetValue(v)
	})
	return true
}

// IsValid delegates to the session parameter. The error is only returned when
// throwOnError is set.
func (p *Parameter) IsValid(v string, throwOnError bool) (bool, error) {
	return p.param.IsValid(v, throwOnError)
}

// Execute commits the current ui value. With autoCommit the session is
// customized and the exec value follows once the backend answers; without it
// the value is only staged on the session until accepted.
func (p *Parameter) Execute(ctx context.Context, autoCommit bool) (bool, error) {
	v := p.State().UIValue
	p.param.SetValue(v)
	if !autoCommit {
		return true, nil
	}
	if err := customize(ctx, p.session, p.tracker); err != nil {
		return false, err
	}
	p.update(func(s *State) { s.ExecValue = v })
	return true, nil
}

// ResetToDefaultValue applies the definition's default immediately.
func (p *Parameter) ResetToDefaultValue() {
	p.update(func(s *State) {
		p.param.ResetToDefaultValue()
		s.UIValue = p.param.Value()
	})
}

// ResetToExecValue drops uncommitted edits.
func (p *Parameter) ResetToExecValue() {
	p.update(func(s *State) {
		s.UIValue = s.ExecValue
		p.param.SetValue(s.ExecValue)
	})
}

// Stringify renders the committed value.
func (p *Parameter) Stringify() string {
	return sdk.FormatValue(p.def, p.State().ExecValue)
}

// Watch registers fn for state changes. The returned func unregisters it.
func (p *Parameter) Watch(fn func(State)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

func (p *Parameter) update(fn func(*State)) {
	p.mu.Lock()
	before := p.state
	fn(&p.state)
	after := p.state
	var watchers []func(State)
	if before != after {
		for _, w := range p.watchers {
			watchers = append(watchers, w)
		}
	}
	p.mu.Unlock()
	for _, w := range watchers {
		w(after)
	}
}

// ExecuteBatch customizes session once and commits the ui value of every
// given handle.
func ExecuteBatch(ctx context.Context, session sdk.Session, tracker Tracker, params ...*Parameter) error {
	if tracker == nil {
		tracker = nopTracker{}
	}
	for _, p := range params {
		if p.session.ID() != session.ID() {
			return errors.New("execute batch: parameter belongs to another session")
		}
	}
	values := make([]string, len(params))
	for i, p := range params {
		values[i] = p.State().UIValue
		p.param.SetValue(values[i])
	}
	if err := customize(ctx, session, tracker); err != nil {
		return err
	}
	for i, p := range params {
		v := values[i]
		p.update(func(s *State) { s.ExecValue = v })
	}
	return nil
}

func customize(ctx context.Context, session sdk.Session, tracker Tracker) (err error) {
	tracker.ExecutionStarted(session.ID())
	defer func() { tracker.ExecutionFinished(session.ID(), err) }()
	return session.Customize(ctx)
}
