package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors input files and directories and invokes a callback once
// changes have settled for the debounce interval.
//
// Files are watched through their parent directory so that editors which
// save by renaming a temp file over the original keep triggering events.
type Watcher struct {
	paths    []string
	onChange func()
	debounce time.Duration
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once

	files map[string]bool // cleaned file paths that trigger a rebuild
	roots []string        // directories whose whole subtree triggers
}

// NewWatcher creates a Watcher for paths. onChange runs after changes have
// been debounced for the given duration.
func NewWatcher(paths []string, debounce time.Duration, onChange func()) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: debounce,
		done:     make(chan struct{}),
		files:    make(map[string]bool),
	}
}

// Start begins watching the configured paths. It blocks until Stop is
// called or the underlying watcher closes.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	for _, p := range w.paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		info, err := os.Stat(p)
		if err != nil {
			log.Printf("warning: not watching %s: %v", p, err)
			continue
		}
		if info.IsDir() {
			w.roots = append(w.roots, p)
			if err := w.addRecursive(p); err != nil {
				log.Printf("warning: failed to watch %s: %v", p, err)
			}
			continue
		}
		w.files[p] = true
		if err := fsw.Add(filepath.Dir(p)); err != nil {
			log.Printf("warning: failed to watch %s: %v", p, err)
		}
	}

	var timer *time.Timer
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.onChange)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return fsw.Close()
		}
	}
}

// Stop signals the watcher to stop. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}

// relevant reports whether an event on name should trigger a rebuild.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if w.files[name] {
		return true
	}
	for _, root := range w.roots {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addRecursive adds a directory and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}
