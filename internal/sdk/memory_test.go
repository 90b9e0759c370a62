package sdk

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemoSessionDefaultsAreValid(t *testing.T) {
	t.Parallel()

	s := NewDemoSession()
	for id, p := range s.Parameters() {
		require.NoError(t, Validate(p.Definition(), p.Value()), id)
	}
}

func TestMemorySessionCustomizeAndExport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewDemoSession()
	s.Parameters()["p-depth"].SetValue("40")
	require.NoError(t, s.Customize(ctx))
	require.Equal(t, 1, s.CustomizeCalls())
	require.Equal(t, "40", s.Customized()[0]["p-depth"])

	res, err := s.Exports()["e-cutlist"].Request(ctx, map[string]string{"p-depth": "50"})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.Content[0].Href, "data:text/plain;base64,"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "p-depth=50\n")
	require.Equal(t, "40", s.Parameters()["p-depth"].Value())

	res, err = s.Exports()["e-quote"].Request(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, res.Content)

	boom := errors.New("boom")
	s.FailCustomize(boom)
	require.ErrorIs(t, s.Customize(ctx), boom)
	require.Equal(t, 2, s.CustomizeCalls())

	s.FailExports(boom)
	_, err = s.Exports()["e-model"].Request(ctx, nil)
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.Close(ctx))
	require.True(t, s.Closed())
}
