package devices

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the registry whenever its file changes, until ctx is
// cancelled. The watch is on the parent directory so replace-by-rename
// saves are seen.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()

		var pending bool
		ticker := time.NewTicker(watchDebounce)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(r.path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					pending = true
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				r.logger.Error("Device registry watcher error", "error", err)

			case <-ticker.C:
				if !pending {
					continue
				}
				pending = false
				if err := r.Reload(); err != nil {
					r.logger.Warn("Device registry reload failed", "error", err)
				}
			}
		}
	}()

	r.logger.Info("Watching device registry", "path", r.path)
	return nil
}
