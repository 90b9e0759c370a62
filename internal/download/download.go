package download

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Downloader fetches export artifacts into Dir.
type Downloader struct {
	Dir  string
	HTTP *http.Client
}

// Save fetches href and writes it to Dir/filename, returning the path.
// http(s) and base64 data URLs are supported.
func (d *Downloader) Save(ctx context.Context, href, filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("download: invalid filename %q", filename)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("download: mkdir: %w", err)
	}
	body, err := d.open(ctx, href)
	if err != nil {
		return "", err
	}
	defer body.Close()

	path := filepath.Join(d.Dir, name)
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("download %s: %w", href, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("download: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return path, nil
}

func (d *Downloader) open(ctx context.Context, href string) (io.ReadCloser, error) {
	if rest, ok := strings.CutPrefix(href, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("download: unsupported data url")
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("download: data url: %w", err)
		}
		return io.NopCloser(strings.NewReader(string(raw))), nil
	}
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("download: unsupported url %q", href)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, err
	}
	httpc := d.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	res, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", href, err)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("download %s: status %d", href, res.StatusCode)
	}
	return res.Body, nil
}
