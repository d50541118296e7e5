package theme

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a theme file whenever it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(Theme)
	logger   *slog.Logger
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger used to report reload failures.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watch starts watching a theme file. onChange runs on the watcher's goroutine with every
// successfully decoded version of the file; callers hand the theme to the render thread
// themselves. Files that fail to decode are logged and skipped, so the last good theme stays.
//
// Parameters:
//   - path: the theme file
//   - onChange: receives each reloaded theme
//   - options: watcher options
//
// Returns:
//   - *Watcher: the running watcher
//   - error: if the watcher cannot be created
func Watch(path string, onChange func(Theme), options ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create theme watcher: %w", err)
	}
	w := &Watcher{
		path:     abs,
		watcher:  fw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("component", "theme-watcher", "path", abs)

	// Editors often replace files by rename, so the directory is watched instead of the file.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			t, err := LoadFile(w.path)
			if err != nil {
				w.logger.Warn("theme reload failed, keeping previous theme", "error", err)
				continue
			}
			w.logger.Debug("theme reloaded", "name", t.Name)
			w.onChange(t)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("theme watcher error", "error", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
