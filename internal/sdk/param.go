package sdk

import "sync"

// valueParam is the Parameter implementation shared by remote and in-memory
// sessions.
type valueParam struct {
	mu    sync.RWMutex
	def   ParameterDefinition
	value string
}

func newValueParam(def ParameterDefinition) *valueParam {
	return &valueParam{def: def, value: def.DefaultValue}
}

func (p *valueParam) Definition() ParameterDefinition { return p.def }

func (p *valueParam) Value() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

func (p *valueParam) SetValue(v string) {
	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
}

func (p *valueParam) IsValid(v string, throwOnError bool) (bool, error) {
	if err := Validate(p.def, v); err != nil {
		if throwOnError {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (p *valueParam) ResetToDefaultValue() { p.SetValue(p.def.DefaultValue) }

func (p *valueParam) Stringify() string { return FormatValue(p.def, p.Value()) }

// currentValues snapshots parameter values keyed by id, applying overrides
// on top.
func currentValues(params map[string]*valueParam, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for id, p := range params {
		out[id] = p.Value()
	}
	for id, v := range overrides {
		out[id] = v
	}
	return out
}
