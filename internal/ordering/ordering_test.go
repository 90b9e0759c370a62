package ordering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/store"
)

func ptr(i int) *int { return &i }

func newStore(t *testing.T, params []sdk.ParameterDefinition, exports []sdk.ExportDefinition) *store.Store {
	t.Helper()
	st := store.New()
	require.NoError(t, st.AddSession(sdk.NewMemorySession("s", "m", params, exports)))
	return st
}

func ids[D any](entries []Entry[D], id func(D) string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = id(e.Definition)
	}
	return out
}

func paramID(d sdk.ParameterDefinition) string { return d.ID }

func TestMissingOrderSortsLast(t *testing.T) {
	t.Parallel()

	st := newStore(t, []sdk.ParameterDefinition{
		{ID: "a", Name: "A", Type: sdk.TypeBool, DefaultValue: "true", Order: ptr(3)},
		{ID: "b", Name: "B", Type: sdk.TypeBool, DefaultValue: "true"},
		{ID: "c", Name: "C", Type: sdk.TypeBool, DefaultValue: "true", Order: ptr(1)},
	}, nil)
	got := Parameters(st, []Ref{
		{SessionID: "s", Key: store.ByID("a")},
		{SessionID: "s", Key: store.ByID("b")},
		{SessionID: "s", Key: store.ByID("c")},
	})
	if diff := cmp.Diff([]string{"c", "a", "b"}, ids(got, paramID)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	st := newStore(t, []sdk.ParameterDefinition{
		{ID: "a", Name: "A", Type: sdk.TypeBool, DefaultValue: "true", Order: ptr(1)},
		{ID: "b", Name: "B", Type: sdk.TypeBool, DefaultValue: "true"},
		{ID: "c", Name: "C", Type: sdk.TypeBool, DefaultValue: "true", Order: ptr(1)},
		{ID: "d", Name: "D", Type: sdk.TypeBool, DefaultValue: "true"},
	}, nil)
	got := Parameters(st, []Ref{
		{SessionID: "s", Key: store.Any("D")},
		{SessionID: "s", Key: store.Any("c")},
		{SessionID: "s", Key: store.Any("B")},
		{SessionID: "s", Key: store.Any("a")},
	})
	if diff := cmp.Diff([]string{"c", "a", "d", "b"}, ids(got, paramID)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, store.Any("D"), got[2].Ref.Key)
}

func TestUnresolvableRefsDropped(t *testing.T) {
	t.Parallel()

	st := newStore(t, nil, []sdk.ExportDefinition{
		{ID: "e1", Name: "Model", DisplayName: "3D model", Type: sdk.ExportDownload, Order: ptr(2)},
		{ID: "e2", Name: "Quote", Type: sdk.ExportEmail, Order: ptr(1)},
	})
	got := Exports(st, []Ref{
		{SessionID: "s", Key: store.Any("3D model")},
		{SessionID: "s", Key: store.Any("missing")},
		{SessionID: "other", Key: store.Any("e2")},
		{SessionID: "s", Key: store.ByName("Quote")},
	})
	require.Equal(t, []string{"e2", "e1"}, ids(got, func(d sdk.ExportDefinition) string { return d.ID }))
}

func TestGrouped(t *testing.T) {
	t.Parallel()

	st := store.New()
	s := sdk.NewDemoSession()
	require.NoError(t, st.AddSession(s))
	params, _ := SessionRefs(st, s.ID(), false)
	groups := Grouped(Parameters(st, params), func(d sdk.ParameterDefinition) string { return d.Group })

	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	require.Equal(t, []string{"Dimensions", "Layout", "Finish"}, names)
	require.Equal(t, []string{"p-material", "p-color", "p-label"}, ids(groups[2].Entries, paramID))
}

func TestSessionRefsHidden(t *testing.T) {
	t.Parallel()

	st := store.New()
	s := sdk.NewDemoSession()
	require.NoError(t, st.AddSession(s))

	visible, exports := SessionRefs(st, s.ID(), false)
	require.Len(t, visible, 8)
	require.Len(t, exports, 3)
	all, _ := SessionRefs(st, s.ID(), true)
	require.Len(t, all, 9)
	require.Equal(t, store.ByID("p-back"), all[0].Key)
}
