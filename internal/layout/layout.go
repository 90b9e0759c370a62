package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jask/paramdeck/internal/ordering"
	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/store"
)

// Layout arranges parameters and exports into named containers. Entries are
// keys as accepted by store.ParseKey.
type Layout struct {
	Containers []Container `yaml:"containers"`
}

type Container struct {
	Name       string   `yaml:"name"`
	Parameters []string `yaml:"parameters,omitempty"`
	Exports    []string `yaml:"exports,omitempty"`
}

// Resolved is a container with its entries resolved and sorted.
type Resolved struct {
	Name       string
	Parameters []ordering.Entry[sdk.ParameterDefinition]
	Exports    []ordering.Entry[sdk.ExportDefinition]
}

// Load reads a layout file. JSON files parse too, being valid YAML.
func Load(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	for i, c := range l.Containers {
		if strings.TrimSpace(c.Name) == "" {
			return Layout{}, fmt.Errorf("parse layout: container %d has no name", i)
		}
	}
	return l, nil
}

// Save writes l to path, creating the directory if needed.
func Save(path string, l Layout) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Default puts every visible parameter in a container per group and all
// visible exports in a final "Exports" container.
func Default(st *store.Store, sessionID string) Layout {
	params, exports := ordering.SessionRefs(st, sessionID, false)
	var l Layout
	for _, g := range ordering.Grouped(ordering.Parameters(st, params), func(d sdk.ParameterDefinition) string { return d.Group }) {
		name := g.Name
		if name == "" {
			name = "Parameters"
		}
		c := Container{Name: name}
		for _, e := range g.Entries {
			c.Parameters = append(c.Parameters, store.ByID(e.Definition.ID).String())
		}
		l.Containers = append(l.Containers, c)
	}
	if len(exports) > 0 {
		c := Container{Name: "Exports"}
		for _, e := range ordering.Exports(st, exports) {
			c.Exports = append(c.Exports, store.ByID(e.Definition.ID).String())
		}
		l.Containers = append(l.Containers, c)
	}
	return l
}

// Resolve binds the layout to a session. Unknown keys are dropped; empty
// containers are kept so the layout stays recognisable.
func Resolve(l Layout, st *store.Store, sessionID string) []Resolved {
	out := make([]Resolved, 0, len(l.Containers))
	for _, c := range l.Containers {
		out = append(out, Resolved{
			Name:       c.Name,
			Parameters: ordering.Parameters(st, refs(sessionID, c.Parameters)),
			Exports:    ordering.Exports(st, refs(sessionID, c.Exports)),
		})
	}
	return out
}

func refs(sessionID string, keys []string) []ordering.Ref {
	out := make([]ordering.Ref, 0, len(keys))
	for _, k := range keys {
		out = append(out, ordering.Ref{SessionID: sessionID, Key: store.ParseKey(k)})
	}
	return out
}
