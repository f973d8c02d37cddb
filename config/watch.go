// ABOUTME: Live config reload via filesystem watching
// ABOUTME: Lets a long-running optimization pick up retuned weights without a restart

package config

import (
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch watches path for writes and calls sc.Update with the freshly parsed
// config whenever the file changes. It runs until stop is closed. Parse
// failures are logged to logger (if non-nil) and otherwise ignored, leaving
// the previously loaded config in place.
//
// The optimization driver does not read SharedConfig itself: the root
// package's WatchConfigFile copies it into the optimizer via Configure, and
// the driver re-reads its tunables only at generation boundaries, so a
// reload mid-generation takes effect on the next generation, never
// corrupting an in-flight evaluation.
func Watch(path string, sc *SharedConfig, stop <-chan struct{}, logger *log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()

		return err
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&fsnotify.Write != fsnotify.Write {
					continue
				}

				// Debounce: editors often emit multiple write events for one save.
				time.Sleep(100 * time.Millisecond)

				cfg, err := LoadConfig(path)
				if err != nil {
					if logger != nil {
						logger.Printf("config watch: reload failed: %v", err)
					}

					continue
				}

				sc.Update(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				if logger != nil {
					logger.Printf("config watch: watcher error: %v", err)
				}
			}
		}
	}()

	return nil
}
