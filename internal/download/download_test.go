package download

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shelf.glb" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("glTF"))
	}))
	t.Cleanup(srv.Close)

	d := &Downloader{Dir: filepath.Join(t.TempDir(), "out")}
	path, err := d.Save(context.Background(), srv.URL+"/shelf.glb", "shelf.glb")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(d.Dir, "shelf.glb"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "glTF", string(data))

	_, err = d.Save(context.Background(), srv.URL+"/missing", "x.glb")
	require.ErrorContains(t, err, "status 404")
	_, err = os.Stat(filepath.Join(d.Dir, "x.glb"))
	require.True(t, os.IsNotExist(err))
}

func TestSaveDataURL(t *testing.T) {
	t.Parallel()

	d := &Downloader{Dir: t.TempDir()}
	href := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("a=1\n"))
	path, err := d.Save(context.Background(), href, "../../cutlist.txt")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(d.Dir, "cutlist.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a=1\n", string(data))

	_, err = d.Save(context.Background(), "data:text/plain,hello", "x.txt")
	require.Error(t, err)
	_, err = d.Save(context.Background(), "ftp://host/file", "x.txt")
	require.Error(t, err)
	_, err = d.Save(context.Background(), href, "")
	require.Error(t, err)
}
