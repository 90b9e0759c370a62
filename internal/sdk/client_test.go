package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu        sync.Mutex
	customize []map[string]string
	exports   []exportRequest
	closed    bool
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/ticket/{ticket}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("ticket") != "good-ticket" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"ticket rejected"}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"sessionId": "s-1",
			"model": {"id": "m-1"},
			"parameters": {
				"p1": {"name": "Width", "displayname": "Shelf width", "type": "Float", "min": 1, "max": 10, "defval": "5", "order": 2},
				"p2": {"id": "p2", "name": "Color", "type": "Color", "defval": "#ffffffff"}
			},
			"exports": {
				"e1": {"name": "Model", "type": "download"}
			}
		}`))
	})
	mux.HandleFunc("PUT /api/v2/session/s-1/output", func(w http.ResponseWriter, r *http.Request) {
		var values map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&values))
		b.mu.Lock()
		b.customize = append(b.customize, values)
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /api/v2/session/s-1/export", func(w http.ResponseWriter, r *http.Request) {
		var req exportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.mu.Lock()
		b.exports = append(b.exports, req)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"exports":{"e1":{"filename":"shelf","content":[{"href":"https://cdn.example/shelf.glb","format":"glb"}]}}}`))
	})
	mux.HandleFunc("POST /api/v2/session/s-1/close", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
	})
	return mux
}

func TestClientSessionLifecycle(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(srv.URL+"/", 2*time.Second)
	s, err := c.Open(ctx, "good-ticket")
	require.NoError(t, err)
	require.Equal(t, "s-1", s.ID())
	require.Equal(t, "m-1", s.ModelID())

	params := s.Parameters()
	require.Len(t, params, 2)
	width := params["p1"]
	require.NotNil(t, width)
	require.Equal(t, "Shelf width", width.Definition().Label())
	require.Equal(t, 2, *width.Definition().Order)
	require.Equal(t, "5", width.Value())

	width.SetValue("7")
	require.NoError(t, s.Customize(ctx))

	exp := s.Exports()["e1"]
	require.NotNil(t, exp)
	res, err := exp.Request(ctx, map[string]string{"p2": "#000000ff"})
	require.NoError(t, err)
	require.Equal(t, "e1", res.ID)
	require.Equal(t, "shelf", res.Filename)
	require.Equal(t, "glb", res.Content[0].Format)

	require.NoError(t, s.Close(ctx))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Equal(t, []map[string]string{{"p1": "7", "p2": "#ffffffff"}}, backend.customize)
	require.Len(t, backend.exports, 1)
	require.Equal(t, []string{"e1"}, backend.exports[0].Exports)
	require.Equal(t, map[string]string{"p1": "7", "p2": "#000000ff"}, backend.exports[0].Parameters)
	require.True(t, backend.closed)
}

func TestClientOpenRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer((&fakeBackend{}).handler(t))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, time.Second).Open(context.Background(), "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "ticket rejected", apiErr.Message)

	_, err = NewClient(srv.URL, time.Second).Open(context.Background(), "  ")
	require.Error(t, err)
}
