package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads the config file while the client runs. Only
// reload-safe fields take effect; the caller decides which.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(Config)
}

// NewWatcher creates a file watcher for the config at path. Returns nil
// (no watcher, no error) when the file does not exist.
func NewWatcher(path string, onChange func(Config)) (*Watcher, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", path, err)
	}

	return &Watcher{watcher: watcher, path: path, onChange: onChange}, nil
}

// Run watches for file changes and reloads. Blocks until ctx is
// cancelled. A reload that fails validation is reported and skipped; the
// running configuration stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: wait 500ms after the last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					cfg, err := Load(w.path)
					if err != nil {
						fmt.Fprintf(os.Stderr, "hot-reload failed: %v\n", err)
						return
					}
					fmt.Fprintf(os.Stderr, "hot-reload: config reloaded\n")
					w.onChange(cfg)
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "file watcher error: %v\n", err)
		}
	}
}
