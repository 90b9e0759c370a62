package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/jask/paramdeck/internal/parameter"
	"github.com/jask/paramdeck/internal/sdk"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrParameterNotFound = errors.New("parameter not found")
	ErrExportNotFound    = errors.New("export not found")
)

// EventKind describes a store change.
type EventKind string

const (
	SessionAdded      EventKind = "session_added"
	SessionRemoved    EventKind = "session_removed"
	ExecutionStarted  EventKind = "execution_started"
	ExecutionFinished EventKind = "execution_finished"
	ParameterChanged  EventKind = "parameter_changed"
)

// Event is delivered to subscribers after the store has been updated.
type Event struct {
	Kind        EventKind
	SessionID   string
	ParameterID string
	State       parameter.State
	Err         error
}

type registration struct {
	session    sdk.Session
	parameters map[string]*parameter.Parameter
	exports    map[string]*parameter.Export
	unwatch    []func()
}

// Store owns the parameter and export handles of every registered session.
type Store struct {
	log   *slog.Logger
	saver parameter.Saver

	mu        sync.RWMutex
	sessions  map[string]*registration
	executing map[string]int

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.log = l } }

// WithSaver sets where download exports are saved.
func WithSaver(saver parameter.Saver) Option { return func(s *Store) { s.saver = saver } }

func New(opts ...Option) *Store {
	s := &Store{
		log:       slog.Default(),
		sessions:  map[string]*registration{},
		executing: map[string]int{},
		subs:      map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddSession builds handles for every parameter and export of session.
// Adding an already registered id replaces its handles.
func (s *Store) AddSession(session sdk.Session) error {
	reg := &registration{
		session:    session,
		parameters: map[string]*parameter.Parameter{},
		exports:    map[string]*parameter.Export{},
	}
	for id := range session.Parameters() {
		p, err := parameter.New(session, id, s)
		if err != nil {
			return err
		}
		reg.parameters[id] = p
	}
	for id := range session.Exports() {
		e, err := parameter.NewExport(session, id, s.saver)
		if err != nil {
			return err
		}
		reg.exports[id] = e
	}
	for id, p := range reg.parameters {
		sid, pid := session.ID(), id
		reg.unwatch = append(reg.unwatch, p.Watch(func(st parameter.State) {
			s.publish(Event{Kind: ParameterChanged, SessionID: sid, ParameterID: pid, State: st})
		}))
	}

	s.mu.Lock()
	old := s.sessions[session.ID()]
	s.sessions[session.ID()] = reg
	s.mu.Unlock()
	if old != nil {
		old.close()
	}
	s.log.Info("session registered", "session", session.ID(), "model", session.ModelID(),
		"parameters", len(reg.parameters), "exports", len(reg.exports))
	s.publish(Event{Kind: SessionAdded, SessionID: session.ID()})
	return nil
}

// RemoveSession discards the handles of id. Unknown ids are ignored.
func (s *Store) RemoveSession(id string) {
	s.mu.Lock()
	reg, ok := s.sessions[id]
	delete(s.sessions, id)
	delete(s.executing, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	reg.close()
	s.log.Info("session removed", "session", id)
	s.publish(Event{Kind: SessionRemoved, SessionID: id})
}

func (r *registration) close() {
	for _, fn := range r.unwatch {
		fn()
	}
}

// Session returns the registered session for id.
func (s *Store) Session(id string) (sdk.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return reg.session, true
}

// SessionIDs lists registered sessions in sorted order.
func (s *Store) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Parameter looks up a parameter handle. It never fails loudly: a missing
// session or parameter yields (nil, false).
func (s *Store) Parameter(sessionID string, k Key) (*parameter.Parameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	defs := make([]sdk.ParameterDefinition, 0, len(reg.parameters))
	for _, p := range reg.parameters {
		defs = append(defs, p.Definition())
	}
	id, ok := ResolveParameter(defs, k)
	if !ok {
		return nil, false
	}
	return reg.parameters[id], true
}

// MustParameter is Parameter for callers that know the handle exists.
func (s *Store) MustParameter(sessionID string, k Key) *parameter.Parameter {
	p, ok := s.Parameter(sessionID, k)
	if !ok {
		panic(fmt.Sprintf("store: %v: session %s parameter %s", ErrParameterNotFound, sessionID, k))
	}
	return p
}

func (s *Store) Export(sessionID string, k Key) (*parameter.Export, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	defs := make([]sdk.ExportDefinition, 0, len(reg.exports))
	for _, e := range reg.exports {
		defs = append(defs, e.Definition())
	}
	id, ok := ResolveExport(defs, k)
	if !ok {
		return nil, false
	}
	return reg.exports[id], true
}

func (s *Store) MustExport(sessionID string, k Key) *parameter.Export {
	e, ok := s.Export(sessionID, k)
	if !ok {
		panic(fmt.Sprintf("store: %v: session %s export %s", ErrExportNotFound, sessionID, k))
	}
	return e
}

// Parameters returns a copy of the handle mapping for sessionID, empty when
// the session is not registered.
func (s *Store) Parameters(sessionID string) map[string]*parameter.Parameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]*parameter.Parameter{}
	if reg, ok := s.sessions[sessionID]; ok {
		for id, p := range reg.parameters {
			out[id] = p
		}
	}
	return out
}

func (s *Store) Exports(sessionID string) map[string]*parameter.Export {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]*parameter.Export{}
	if reg, ok := s.sessions[sessionID]; ok {
		for id, e := range reg.exports {
			out[id] = e
		}
	}
	return out
}

// Executing reports whether a customization for sessionID is in flight.
func (s *Store) Executing(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executing[sessionID] > 0
}

// ExecutionStarted implements parameter.Tracker.
func (s *Store) ExecutionStarted(sessionID string) {
	s.mu.Lock()
	s.executing[sessionID]++
	n := s.executing[sessionID]
	s.mu.Unlock()
	s.log.Debug("execution started", "session", sessionID, "in_flight", n)
	s.publish(Event{Kind: ExecutionStarted, SessionID: sessionID})
}

// ExecutionFinished implements parameter.Tracker.
func (s *Store) ExecutionFinished(sessionID string, err error) {
	s.mu.Lock()
	if s.executing[sessionID] > 0 {
		s.executing[sessionID]--
	}
	if s.executing[sessionID] == 0 {
		delete(s.executing, sessionID)
	}
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("execution failed", "session", sessionID, "err", err)
	} else {
		s.log.Debug("execution finished", "session", sessionID)
	}
	s.publish(Event{Kind: ExecutionFinished, SessionID: sessionID, Err: err})
}

// Dirty returns the handles of sessionID with uncommitted values, by id.
func (s *Store) Dirty(sessionID string) []*parameter.Parameter {
	params := s.Parameters(sessionID)
	ids := make([]string, 0, len(params))
	for id, p := range params {
		if p.State().Dirty() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]*parameter.Parameter, len(ids))
	for i, id := range ids {
		out[i] = params[id]
	}
	return out
}

// Accept commits every dirty parameter of sessionID with one customization.
func (s *Store) Accept(ctx context.Context, sessionID string) error {
	session, ok := s.Session(sessionID)
	if !ok {
		return fmt.Errorf("accept %s: %w", sessionID, ErrSessionNotFound)
	}
	dirty := s.Dirty(sessionID)
	if len(dirty) == 0 {
		return nil
	}
	if err := parameter.ExecuteBatch(ctx, session, s, dirty...); err != nil {
		return fmt.Errorf("accept %s: %w", sessionID, err)
	}
	return nil
}

// Reject reverts every dirty parameter of sessionID to its exec value.
func (s *Store) Reject(sessionID string) {
	for _, p := range s.Dirty(sessionID) {
		p.ResetToExecValue()
	}
}

// Suggest returns the parameter name closest to text, for lookup misses.
func (s *Store) Suggest(sessionID, text string) (string, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, p := range s.Parameters(sessionID) {
		def := p.Definition()
		for _, cand := range []string{def.Name, def.DisplayName} {
			if cand == "" {
				continue
			}
			d := levenshtein.ComputeDistance(text, strings.ToLower(cand))
			if bestDist < 0 || d < bestDist || (d == bestDist && cand < best) {
				best, bestDist = cand, d
			}
		}
	}
	// anything further than half the input away is noise
	if bestDist < 0 || bestDist > (len(text)+1)/2 {
		return "", false
	}
	return best, true
}

// Subscribe registers fn for store events. Events are delivered
// synchronously on the goroutine that caused them.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
