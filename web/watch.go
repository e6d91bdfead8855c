package web

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
)

// debounce is how close together two events for the same file must be for
// the second one to be dropped. Editors tend to write a file in bursts.
const debounce = 100 * time.Millisecond

// Watcher reports changes to the files a Handler serves: the manifest, the
// sheet images next to it, and in pack mode the sprite images.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches the passed directories.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// NewHandlerWatcher watches everything h reads from.
func NewHandlerWatcher(h *Handler) (*Watcher, error) {
	dirs := []string{filepath.Dir(h.manifestPath)}
	if h.spritesDir != "" {
		dirs = append(dirs, h.spritesDir)
	}
	return NewWatcher(dirs...)
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// run forwards interesting events until the watcher is closed. It owns
// Events and Errors and closes them on the way out.
func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

// ReloadOnChange reloads h whenever w reports a change, until ctx is done or
// w is closed.
func ReloadOnChange(ctx context.Context, h *Handler, w *Watcher) {
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			glog.Infof("%s changed, reloading", name)
			if err := h.Reload(); err != nil {
				glog.Errorf("reload failed, keeping generation %d: %v", h.Generation(), err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			glog.Errorf("watching files: %v", err)
		case <-ctx.Done():
			return
		}
	}
}
