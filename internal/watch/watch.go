// Package watch refreshes the launcher's item set on demand by
// watching kit directories for changes: one fsnotify.Watcher, one
// dedicated goroutine draining Events/Errors, changes debounced before
// firing a refresh rather than reacting to every individual write.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher debounces filesystem change notifications under one or more
// kit roots into a single refresh signal.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	Refresh chan struct{}
}

// New creates a Watcher rooted at each of roots. Refresh receives a
// value (non-blocking, capacity 1 — coalesces bursts into one signal)
// whenever the debounce window closes after one or more filesystem
// events under a watched root.
func New(roots []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := fsw.Add(root); err != nil {
			logger.Warn("watch: failed to add root", zap.String("root", root), zap.Error(err))
			continue
		}
	}
	return &Watcher{
		fsw:      fsw,
		logger:   logger,
		debounce: debounce,
		Refresh:  make(chan struct{}, 1),
	}, nil
}

// Run drains fsnotify events until ctx is done, coalescing bursts of
// changes into a single debounced signal on Refresh.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			_ = w.fsw.Close()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.logger.Debug("watch: fs event", zap.String("name", event.Name), zap.String("op", event.Op.String()))
			resetTimer()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch: watcher error", zap.Error(err))
		case <-timerC:
			timerC = nil
			select {
			case w.Refresh <- struct{}{}:
			default:
			}
		}
	}
}

// AddKit watches a newly discovered kit's root directory (and its
// agents/scripts subdirectories) for changes.
func (w *Watcher) AddKit(kitRoot string) error {
	for _, sub := range []string{"", "agents", "scripts", "scriptlets"} {
		dir := filepath.Join(kitRoot, sub)
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Debug("watch: skip missing kit subdir", zap.String("dir", dir), zap.Error(err))
		}
	}
	return nil
}
