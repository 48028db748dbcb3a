package server

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOverlay watches the routing overlay file and reloads the source
// when it changes. Watching the parent directory survives the
// rename-then-replace pattern editors and config tools use. A broken
// overlay is logged and the previous routing table stays active.
func WatchOverlay(ctx context.Context, path string, src *Source) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)

	// Debounce: editors fire several events per save.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)

		case <-pending:
			pending = nil
			if err := src.Reload(path); err != nil {
				log.Printf("server: overlay reload %s: %v", path, err)
				continue
			}
			log.Printf("server: routing overlay reloaded from %s", path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("server: overlay watch: %v", err)
		}
	}
}
