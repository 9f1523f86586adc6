package exporter

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const watchDebounce = 300 * time.Millisecond

type fileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
}

// watchFile starts watching directory of path. Events are delivered once
// watchFile returns, so changes made afterwards are never missed.
func watchFile(path string) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "Cannot create file watcher")
	}
	// editors replace files, so directory is watched instead of file
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "Cannot watch %q", path)
	}
	return &fileWatcher{watcher: watcher, path: path, debounce: watchDebounce}, nil
}

func (w *fileWatcher) Close() error {
	return w.watcher.Close()
}

func (w *fileWatcher) run(ctx context.Context, export func()) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] watcher error: %v", err)
		case <-timer.C:
			log.Printf("[watch] %q changed, exporting", w.path)
			export()
		}
	}
}

// Watch calls export after every change of file at path until ctx is done.
// Events arriving within watchDebounce are merged into one call.
func Watch(ctx context.Context, path string, export func()) error {
	w, err := watchFile(path)
	if err != nil {
		return err
	}
	defer w.Close()
	log.Printf("[watch] Watching %q", w.path)
	return w.run(ctx, export)
}
