// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher hot-reloads the configuration file on change and hands the new
// Config to the registered callback. Reload failures keep the previous
// configuration in effect.
type Watcher struct {
	configPath string
	onReload   func(*Config)

	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// NewWatcher creates a watcher for configPath. onReload is invoked with the
// freshly parsed configuration after every successful reload.
func NewWatcher(configPath string, onReload func(*Config)) *Watcher {
	return &Watcher{
		configPath: configPath,
		onReload:   onReload,
		stop:       make(chan struct{}),
	}
}

// Start begins watching the configuration file in the background.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	// Watch the directory: editors replace files on save, which drops
	// watches registered on the file itself.
	if err := watcher.Add(filepath.Dir(w.configPath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.configPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					log.Infof("Config file changed (%s), reloading...", event.Name)
					// Simple debounce for editors that write in bursts
					time.Sleep(100 * time.Millisecond)
					cfg, err := LoadConfig(w.configPath)
					if err != nil {
						log.Errorf("Failed to reload config, keeping previous: %v", err)
						continue
					}
					if w.onReload != nil {
						w.onReload(cfg)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("Config watcher error: %v", err)
			case <-w.stop:
				return
			}
		}
	}()

	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	if w.watcher != nil {
		select {
		case <-w.stop:
			// Channel already closed
		default:
			close(w.stop)
		}
		w.watcher.Close()
		w.watcher = nil
	}
}
