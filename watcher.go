package ledmanager

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// WatchDebounce is how long Watch waits for a burst of file events to settle
// before reloading.
var WatchDebounce = 500 * time.Millisecond

// Watch reloads the configuration file at path whenever it changes and
// applies it to the running LEDs. It blocks until ctx is canceled. A file
// that fails to load or validate is logged and otherwise ignored.
func (d *Daemon) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing
	// to it, which drops a watch on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "failed to watch config directory")
	}

	target := filepath.Clean(path)
	d.logger.Debug("watching config file", "path", target, "debounce", WatchDebounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(WatchDebounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			d.reload(path)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (d *Daemon) reload(path string) {
	cfg, err := LoadConfig(path)
	if err != nil {
		d.logger.Warn("failed to reload config", "error", err)
		return
	}

	if err := d.Apply(cfg); err != nil {
		d.logger.Warn("rejected reloaded config", "error", err)
		return
	}

	d.logger.Info("config reloaded", "path", path)
}
