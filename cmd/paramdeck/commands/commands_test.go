package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/store"
)

func demoStore(t *testing.T) (*store.Store, *sdk.MemorySession) {
	t.Helper()
	st := store.New()
	s := sdk.NewDemoSession()
	require.NoError(t, st.AddSession(s))
	return st, s
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	got, err := parseAssignments([]string{"Width=90", "display:Shelf height = 100", "name:Engraving="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"Width":                "90",
		"display:Shelf height": " 100",
		"name:Engraving":       "",
	}, got)

	_, err = parseAssignments([]string{"Width"})
	require.Error(t, err)
	_, err = parseAssignments([]string{"=5"})
	require.Error(t, err)
}

func TestApplyAssignmentsCustomizesOnce(t *testing.T) {
	t.Parallel()

	st, s := demoStore(t)
	err := applyAssignments(context.Background(), st, s.ID(), []string{"Width=90", "id:p-depth=40"})
	require.NoError(t, err)
	require.Equal(t, 1, s.CustomizeCalls())
	require.Equal(t, "90", st.MustParameter(s.ID(), store.ByID("p-width")).State().ExecValue)
	require.Equal(t, "40", st.MustParameter(s.ID(), store.ByID("p-depth")).State().ExecValue)
}

func TestApplyAssignmentsErrors(t *testing.T) {
	t.Parallel()

	st, s := demoStore(t)
	err := applyAssignments(context.Background(), st, s.ID(), []string{"Widht=90"})
	require.ErrorContains(t, err, `did you mean "Width"`)

	err = applyAssignments(context.Background(), st, s.ID(), []string{"Depth=99"})
	require.ErrorIs(t, err, sdk.ErrInvalidValue)
	require.Zero(t, s.CustomizeCalls())
}

func TestPrintParametersPlain(t *testing.T) {
	t.Parallel()

	st, s := demoStore(t)
	var buf bytes.Buffer
	printParameters(&buf, st, s.ID(), false, false)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "p-width\tWidth\tFloat\t120", lines[0])
	require.Equal(t, "e-model\tModel\texport:download\t", lines[len(lines)-3])
	require.NotContains(t, buf.String(), "p-seed")

	buf.Reset()
	printParameters(&buf, st, s.ID(), true, false)
	require.Contains(t, buf.String(), "p-seed")
}

func TestPrintParametersPretty(t *testing.T) {
	t.Parallel()

	st, s := demoStore(t)
	var buf bytes.Buffer
	printParameters(&buf, st, s.ID(), false, true)
	out := buf.String()
	for _, want := range []string{"Dimensions", "Shelf width", "120.0", "Oak", "Exports", "Cut list"} {
		require.Contains(t, out, want)
	}
}

func TestExecuteClosesAppWhenCommandFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PARAMDECK_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("PARAMDECK_DATABASE_PATH", filepath.Join(dir, "paramdeck.db"))
	t.Setenv("PARAMDECK_LOG_FILE", filepath.Join(dir, "paramdeck.log"))
	t.Setenv("PARAMDECK_DOWNLOAD_DIR", dir)
	t.Cleanup(func() { app, demo = nil, false })

	err := execute([]string{"--demo", "set", "Bogus=1"})
	require.Error(t, err)
	require.NotNil(t, app)
	require.Empty(t, app.store.SessionIDs())
	require.Error(t, app.db.Ping())
}
