package store

import (
	"sort"
	"strings"

	"github.com/jask/paramdeck/internal/sdk"
)

// KeyKind selects which definition field a Key matches.
type KeyKind int

const (
	// KeyAny tries id, then name, then display name.
	KeyAny KeyKind = iota
	KeyID
	KeyName
	KeyDisplayName
)

// Key identifies a parameter or export within a session.
type Key struct {
	Kind  KeyKind
	Value string
}

func ByID(id string) Key            { return Key{Kind: KeyID, Value: id} }
func ByName(name string) Key        { return Key{Kind: KeyName, Value: name} }
func ByDisplayName(name string) Key { return Key{Kind: KeyDisplayName, Value: name} }
func Any(s string) Key              { return Key{Kind: KeyAny, Value: s} }

// ParseKey reads "id:x", "name:x", "display:x" or a bare "x" (any).
func ParseKey(s string) Key {
	prefix, rest, ok := strings.Cut(s, ":")
	if ok {
		switch strings.ToLower(strings.TrimSpace(prefix)) {
		case "id":
			return ByID(strings.TrimSpace(rest))
		case "name":
			return ByName(strings.TrimSpace(rest))
		case "display":
			return ByDisplayName(strings.TrimSpace(rest))
		}
	}
	return Any(strings.TrimSpace(s))
}

func (k Key) String() string {
	switch k.Kind {
	case KeyID:
		return "id:" + k.Value
	case KeyName:
		return "name:" + k.Value
	case KeyDisplayName:
		return "display:" + k.Value
	}
	return k.Value
}

// entry is the subset of a definition that keys can match.
type entry struct {
	id, name, displayName string
}

// resolve returns the id of the first entry matching k. Each field is tried
// across all entries before the next, so an id match always beats a name
// match on a different entry.
func resolve(entries []entry, k Key) (string, bool) {
	if k.Value == "" {
		return "", false
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	fields := []func(entry) string{
		func(e entry) string { return e.id },
		func(e entry) string { return e.name },
		func(e entry) string { return e.displayName },
	}
	switch k.Kind {
	case KeyID:
		fields = fields[:1]
	case KeyName:
		fields = fields[1:2]
	case KeyDisplayName:
		fields = fields[2:]
	}
	for _, field := range fields {
		for _, e := range entries {
			if field(e) == k.Value {
				return e.id, true
			}
		}
	}
	return "", false
}

// ResolveParameter finds the id of the parameter definition k refers to.
func ResolveParameter(defs []sdk.ParameterDefinition, k Key) (string, bool) {
	entries := make([]entry, len(defs))
	for i, d := range defs {
		entries[i] = entry{d.ID, d.Name, d.DisplayName}
	}
	return resolve(entries, k)
}

// ResolveExport finds the id of the export definition k refers to.
func ResolveExport(defs []sdk.ExportDefinition, k Key) (string, bool) {
	entries := make([]entry, len(defs))
	for i, d := range defs {
		entries[i] = entry{d.ID, d.Name, d.DisplayName}
	}
	return resolve(entries, k)
}
