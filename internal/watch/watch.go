// Package watch implements directory-watch support for long-running CLI
// use (spec.md's CLI surface; e.g. `maintain wikify --watch`): react to a
// document import directory changing by invoking a callback after a brief
// debounce, falling back to polling if the OS filesystem-notification API
// is unavailable. Grounded on the teacher's cmd/bd/daemon_watcher.go
// FileWatcher (same fsnotify-with-polling-fallback shape), adapted from
// single-JSONL-file watching to whole-directory watching.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultPollInterval = 5 * time.Second
const defaultDebounce = 500 * time.Millisecond

// logFunc receives printf-style watcher diagnostics; nil means discard. No
// logging framework is introduced here (see DESIGN.md's Ambient Stack
// notes) - this matches the teacher's own plain stderr-printf diagnostics
// in daemon_watcher.go.
type logFunc func(format string, args ...interface{})

// Watcher monitors a directory for file changes, debouncing bursts of
// events into a single onChange call.
type Watcher struct {
	dir       string
	onChange  func()
	debouncer *Debouncer
	log       logFunc

	fsw         *fsnotify.Watcher
	pollingMode bool
	pollEvery   time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a directory watcher for dir. onChange is called (debounced)
// whenever a file under dir is created, written, removed, or renamed. Falls
// back to mtime polling if the platform's filesystem-notification API
// cannot be initialized. log may be nil to discard diagnostics.
func New(dir string, onChange func(), log logFunc) (*Watcher, error) {
	if log == nil {
		log = func(string, ...interface{}) {}
	}
	w := &Watcher{
		dir:       dir,
		onChange:  onChange,
		debouncer: NewDebouncer(defaultDebounce, onChange),
		log:       log,
		pollEvery: defaultPollInterval,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log("Warning: fsnotify unavailable (%v), falling back to polling every %v\n", err, w.pollEvery)
		w.pollingMode = true
		return w, nil
	}

	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		log("Warning: failed to watch %s (%v), falling back to polling every %v\n", dir, err, w.pollEvery)
		w.pollingMode = true
		return w, nil
	}

	w.fsw = fsw
	return w, nil
}

// StderrLog is a convenience logFunc that writes to os.Stderr.
func StderrLog(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// Start begins monitoring in the background until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if w.pollingMode {
		w.startPolling(ctx)
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					w.log("directory change detected: %s (%s)\n", event.Name, event.Op)
					w.debouncer.Trigger()
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.log("watcher error: %v\n", err)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) startPolling(ctx context.Context) {
	w.log("watching %s via polling every %v\n", w.dir, w.pollEvery)
	last := snapshot(w.dir)
	ticker := time.NewTicker(w.pollEvery)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current := snapshot(w.dir)
				if !equalSnapshots(last, current) {
					last = current
					w.log("directory change detected (polling): %s\n", w.dir)
					w.debouncer.Trigger()
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close stops monitoring and releases resources.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.debouncer.Cancel()
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func snapshot(dir string) map[string]fileStamp {
	out := make(map[string]fileStamp)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out[filepath.Join(dir, e.Name())] = fileStamp{size: info.Size(), modTime: info.ModTime()}
	}
	return out
}

func equalSnapshots(a, b map[string]fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for path, stampA := range a {
		stampB, ok := b[path]
		if !ok || stampA != stampB {
			return false
		}
	}
	return true
}
