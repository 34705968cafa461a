package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"adforge/internal/logging"
)

// Watch monitors the config file and invokes onChange after each write.
// It returns a stop function that closes the watcher. The logging
// section is the main hot-reload consumer: flipping debug_mode takes
// effect without a restart.
func Watch(path string, onChange func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files on save
	// and a file-level watch dies with the old inode.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				logging.Get(logging.CategoryConfig).Info("config changed on disk, reloading")
				if err := logging.ReloadConfig(); err != nil {
					logging.Get(logging.CategoryConfig).Error("reload failed: %v", err)
				}
				if onChange != nil {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Get(logging.CategoryConfig).Error("watch error: %v", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
