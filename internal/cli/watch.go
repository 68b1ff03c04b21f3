package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 200 * time.Millisecond

// layoutWatcher calls reload whenever a layout file in dir changes.
type layoutWatcher struct {
	dir     string
	reload  func() error
	logger  *log.Logger
	watcher *fsnotify.Watcher
}

// newLayoutWatcher starts watching dir. Close the returned watcher to stop.
func newLayoutWatcher(dir string, reload func() error, logger *log.Logger) (*layoutWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create layout watcher")
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "watch %s", dir)
	}
	return &layoutWatcher{dir: dir, reload: reload, logger: logger, watcher: w}, nil
}

// relevant reports whether ev touches a layout file.
func relevant(ev fsnotify.Event) bool {
	if !layout.IsLayoutFile(filepath.Base(ev.Name)) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// Run processes events until ctx is done or the watcher is closed.
func (w *layoutWatcher) Run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("layout file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.reload(); err != nil {
				w.logger.Warn("layout reload failed, keeping previous layouts", "dir", w.dir, "error", err)
				continue
			}
			w.logger.Info("layouts reloaded", "dir", w.dir)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("layout watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *layoutWatcher) Close() error {
	return w.watcher.Close()
}
