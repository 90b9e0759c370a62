package layout

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with the reloaded layout whenever path changes, until ctx
// is done. The parent directory is watched so editors that replace the file
// are picked up.
func Watch(ctx context.Context, path string, fn func(Layout, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}
	go func() {
		defer w.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				l, err := Load(path)
				if err != nil && ev.Has(fsnotify.Rename) {
					// the old name went away; the replacement arrives as Create
					continue
				}
				fn(l, err)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(Layout{}, err)
			}
		}
	}()
	return nil
}
