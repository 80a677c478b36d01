package content

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher calls OnChange after the content path stops changing for Debounce.
// Editors tend to write a file in several steps, so events are coalesced.
type Watcher struct {
	Path     string
	Debounce time.Duration
	OnChange func()
	Logger   *log.Logger
}

func NewWatcher(path string, onChange func(), logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{Path: path, Debounce: defaultDebounce, OnChange: onChange, Logger: logger}
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer fw.Close()

	dir, only := w.Path, ""
	if fi, err := os.Stat(w.Path); err == nil && !fi.IsDir() {
		// watch the parent: editors replace files via rename
		dir, only = filepath.Dir(w.Path), filepath.Clean(w.Path)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.Logger.Printf("[content] watching %s", dir)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if only != "" && filepath.Clean(ev.Name) != only {
				continue
			}
			if only == "" && !isContentFile(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Printf("[content] watch error: %v", err)
		case <-timer.C:
			if w.OnChange != nil {
				w.OnChange()
			}
		}
	}
}
