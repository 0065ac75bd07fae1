package content

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a content directory and invokes a callback after file
// changes settle. Editors fire bursts of writes per save, so events are
// debounced before the callback runs.
type Watcher struct {
	fsw    *fsnotify.Watcher
	done   chan struct{}
	closed chan struct{}
}

// NewWatcher watches root and its subdirectories for Markdown changes.
// onChange runs on the watcher goroutine once events have been quiet for
// the debounce interval.
func NewWatcher(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go w.run(debounce, onChange)
	return w, nil
}

func (w *Watcher) run(debounce time.Duration, onChange func()) {
	defer close(w.closed)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			// New subdirectories must be added to the watch set.
			if ev.Op.Has(fsnotify.Create) {
				_ = w.fsw.Add(ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// relevant filters out events for non-Markdown files and editor temp files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	// Directory creations have no extension but still matter (new watch roots).
	if filepath.Ext(base) == "" {
		return ev.Op.Has(fsnotify.Create)
	}
	return strings.HasSuffix(base, ".md")
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	<-w.closed
	return err
}
