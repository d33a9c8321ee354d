package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDebouncerCollapsesBurstsIntoOneCall(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected exactly 1 call after a debounced burst, got %d", calls)
	}
}

func TestDebouncerCancelPreventsCall(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.Trigger()
	d.Cancel()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no calls after Cancel, got %d", calls)
	}
}

func TestWatcherPollingModeDetectsChange(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	changed := 0
	w := &Watcher{
		dir:         dir,
		debouncer:   NewDebouncer(10*time.Millisecond, func() { mu.Lock(); changed++; mu.Unlock() }),
		log:         func(string, ...interface{}) {},
		pollingMode: true,
		pollEvery:   20 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.startPolling(ctx)

	if err := os.WriteFile(filepath.Join(dir, "new.md"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(150 * time.Millisecond)
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	if changed == 0 {
		t.Error("expected polling mode to detect the new file and trigger onChange")
	}
}

func TestSnapshotIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	snap := snapshot(dir)
	if len(snap) != 1 {
		t.Fatalf("expected 1 entry (directories excluded), got %d", len(snap))
	}
}

func TestEqualSnapshotsDetectsDifference(t *testing.T) {
	a := map[string]fileStamp{"f": {size: 1, modTime: time.Unix(0, 0)}}
	b := map[string]fileStamp{"f": {size: 2, modTime: time.Unix(0, 0)}}
	if equalSnapshots(a, b) {
		t.Error("expected differing sizes to compare unequal")
	}
	if !equalSnapshots(a, a) {
		t.Error("expected identical snapshots to compare equal")
	}
}

func TestNewFallsBackToPollingWhenDirMissing(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "does-not-exist"), func() {}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !w.pollingMode {
		t.Error("expected polling fallback for a nonexistent directory")
	}
}
