// Package watcher watches a project root and signals when its files change
// so serve --watch can run a fresh full scan. It never feeds individual
// events downstream: a change is only a hint that the next scan is due, and
// every scan is a complete re-walk.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher monitors a directory tree using OS-level notifications.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	ignored map[string]struct{}
	log     zerolog.Logger

	// Changed receives one signal per quiescent burst of file events.
	Changed chan struct{}
}

// New creates a Watcher over root, registering every non-ignored directory.
func New(root string, ignored map[string]struct{}, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		root:    root,
		ignored: ignored,
		log:     log,
		Changed: make(chan struct{}, 1),
	}
	if err := w.addDirs(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("cannot read directory; not watched")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := w.ignored[d.Name()]; skip {
				return fs.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("cannot watch directory")
		}
		return nil
	})
}

// Start listens for file events, coalescing bursts within the quiescence
// window into one Changed signal. Blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context, quiescence time.Duration) {
	defer w.fsw.Close()
	defer close(w.Changed)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.isIgnored(ev.Name) {
				continue
			}
			// New directories need registering before their files produce events.
			if ev.Op&fsnotify.Create != 0 {
				if err := w.fsw.Add(ev.Name); err == nil {
					_ = w.addDirs(ev.Name)
				}
			}
			switch {
			case ev.Op&fsnotify.Write != 0,
				ev.Op&fsnotify.Create != 0,
				ev.Op&fsnotify.Remove != 0,
				ev.Op&fsnotify.Rename != 0:
				if timer == nil {
					timer = time.NewTimer(quiescence)
					timerC = timer.C
				} else {
					timer.Reset(quiescence)
				}
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.Changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// isIgnored reports whether the event path sits under an ignored directory.
func (w *Watcher) isIgnored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if _, skip := w.ignored[part]; skip {
			return true
		}
	}
	return false
}
