package ordering

import (
	"math"
	"slices"

	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/store"
)

// Ref names a parameter or export of a session.
type Ref struct {
	SessionID string
	Key       store.Key
}

// Entry pairs a ref with the definition it resolved to.
type Entry[D any] struct {
	Ref        Ref
	Definition D
}

// Parameters resolves refs against st and sorts them by definition order.
// Refs that do not resolve are dropped.
func Parameters(st *store.Store, refs []Ref) []Entry[sdk.ParameterDefinition] {
	return sorted(refs, func(r Ref) (sdk.ParameterDefinition, bool) {
		p, ok := st.Parameter(r.SessionID, r.Key)
		if !ok {
			return sdk.ParameterDefinition{}, false
		}
		return p.Definition(), true
	}, func(d sdk.ParameterDefinition) *int { return d.Order })
}

// Exports is Parameters for exports.
func Exports(st *store.Store, refs []Ref) []Entry[sdk.ExportDefinition] {
	return sorted(refs, func(r Ref) (sdk.ExportDefinition, bool) {
		e, ok := st.Export(r.SessionID, r.Key)
		if !ok {
			return sdk.ExportDefinition{}, false
		}
		return e.Definition(), true
	}, func(d sdk.ExportDefinition) *int { return d.Order })
}

func sorted[D any](refs []Ref, resolve func(Ref) (D, bool), order func(D) *int) []Entry[D] {
	out := make([]Entry[D], 0, len(refs))
	for _, r := range refs {
		if d, ok := resolve(r); ok {
			out = append(out, Entry[D]{Ref: r, Definition: d})
		}
	}
	rank := func(e Entry[D]) float64 {
		if o := order(e.Definition); o != nil {
			return float64(*o)
		}
		return math.Inf(1)
	}
	slices.SortStableFunc(out, func(a, b Entry[D]) int {
		ra, rb := rank(a), rank(b)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	})
	return out
}

// Group is a run of entries sharing a definition group.
type Group[D any] struct {
	Name    string
	Entries []Entry[D]
}

// Grouped splits sorted entries by group. Groups appear in the order of
// their first entry.
func Grouped[D any](entries []Entry[D], group func(D) string) []Group[D] {
	var out []Group[D]
	index := map[string]int{}
	for _, e := range entries {
		name := group(e.Definition)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Group[D]{Name: name})
		}
		out[i].Entries = append(out[i].Entries, e)
	}
	return out
}

// SessionRefs returns refs by id for every parameter and export of a
// session, skipping hidden ones unless includeHidden is set.
func SessionRefs(st *store.Store, sessionID string, includeHidden bool) (params, exports []Ref) {
	for id, p := range st.Parameters(sessionID) {
		if p.Definition().Hidden && !includeHidden {
			continue
		}
		params = append(params, Ref{SessionID: sessionID, Key: store.ByID(id)})
	}
	for id, e := range st.Exports(sessionID) {
		if e.Definition().Hidden && !includeHidden {
			continue
		}
		exports = append(exports, Ref{SessionID: sessionID, Key: store.ByID(id)})
	}
	byKey := func(a, b Ref) int {
		switch {
		case a.Key.Value < b.Key.Value:
			return -1
		case a.Key.Value > b.Key.Value:
			return 1
		}
		return 0
	}
	slices.SortFunc(params, byKey)
	slices.SortFunc(exports, byKey)
	return params, exports
}
