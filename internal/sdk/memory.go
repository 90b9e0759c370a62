package sdk

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// MemorySession is an in-process Session. It backs demo mode and tests.
type MemorySession struct {
	id      string
	modelID string
	params  map[string]*valueParam
	exports map[string]*memoryExport

	mu           sync.Mutex
	customizeErr error
	exportErr    error
	customized   []map[string]string
	closed       bool

	// Gate, when set, blocks Customize until it receives or ctx ends.
	Gate chan struct{}

	customizeCalls atomic.Int64
}

// NewMemorySession builds a session from definitions.
func NewMemorySession(id, modelID string, params []ParameterDefinition, exports []ExportDefinition) *MemorySession {
	s := &MemorySession{
		id:      id,
		modelID: modelID,
		params:  make(map[string]*valueParam, len(params)),
		exports: make(map[string]*memoryExport, len(exports)),
	}
	for _, def := range params {
		s.params[def.ID] = newValueParam(def)
	}
	for _, def := range exports {
		s.exports[def.ID] = &memoryExport{session: s, def: def}
	}
	return s
}

func (s *MemorySession) ID() string      { return s.id }
func (s *MemorySession) ModelID() string { return s.modelID }

func (s *MemorySession) Parameters() map[string]Parameter {
	out := make(map[string]Parameter, len(s.params))
	for id, p := range s.params {
		out[id] = p
	}
	return out
}

func (s *MemorySession) Exports() map[string]Export {
	out := make(map[string]Export, len(s.exports))
	for id, e := range s.exports {
		out[id] = e
	}
	return out
}

func (s *MemorySession) Customize(ctx context.Context) error {
	s.customizeCalls.Add(1)
	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customizeErr != nil {
		return s.customizeErr
	}
	s.customized = append(s.customized, currentValues(s.params, nil))
	return nil
}

func (s *MemorySession) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// FailCustomize makes subsequent Customize calls return err. Nil clears it.
func (s *MemorySession) FailCustomize(err error) {
	s.mu.Lock()
	s.customizeErr = err
	s.mu.Unlock()
}

// FailExports makes subsequent export requests return err.
func (s *MemorySession) FailExports(err error) {
	s.mu.Lock()
	s.exportErr = err
	s.mu.Unlock()
}

// CustomizeCalls counts Customize invocations, including failed ones.
func (s *MemorySession) CustomizeCalls() int { return int(s.customizeCalls.Load()) }

// Customized returns the values sent by each successful Customize.
func (s *MemorySession) Customized() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.customized...)
}

func (s *MemorySession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type memoryExport struct {
	session *MemorySession
	def     ExportDefinition
}

func (e *memoryExport) Definition() ExportDefinition { return e.def }

func (e *memoryExport) Request(ctx context.Context, overrides map[string]string) (ExportResponse, error) {
	if err := ctx.Err(); err != nil {
		return ExportResponse{}, err
	}
	e.session.mu.Lock()
	err := e.session.exportErr
	e.session.mu.Unlock()
	if err != nil {
		return ExportResponse{}, fmt.Errorf("export %s: %w", e.def.Name, err)
	}
	values := currentValues(e.session.params, overrides)
	res := ExportResponse{ID: e.def.ID, Filename: e.def.Name}
	if e.def.Type == ExportEmail {
		res.Msg = "export sent by email"
		return res, nil
	}
	var body strings.Builder
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&body, "%s=%s\n", id, values[id])
	}
	res.Content = []ExportContent{{
		Href:   "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(body.String())),
		Format: "txt",
		Size:   int64(body.Len()),
	}}
	return res, nil
}
