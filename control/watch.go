// File: control/watch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Watcher observes a configuration file and fires the reload hooks
// when it changes, so route tables and settings can be swapped while
// live connections keep serving.

package control

import (
	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
)

// Watcher ties a file-system watch to the hot-reload hook registry.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher starts watching path. Every write or create event on the
// file triggers the registered reload hooks.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				glog.Infof("config change detected: %s", ev.Name)
				TriggerHotReload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			glog.Warningf("config watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watch.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
