package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) record(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *eventRecorder) has(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == want {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileReported(t *testing.T) {
	vaultDir := t.TempDir()
	rec := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, vaultDir, testLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:new.md")
	}, "expected created:new.md callback")
}

func TestWatcher_WriteToKnownFileReportsUpdated(t *testing.T) {
	vaultDir := t.TempDir()
	_ = os.WriteFile(filepath.Join(vaultDir, "note.md"), []byte("# One"), 0o644)

	rec := &eventRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, vaultDir, testLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "note.md"), []byte("# Two"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("updated:note.md")
	}, "expected updated:note.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir := t.TempDir()
	rec := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, vaultDir, testLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(vaultDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:subdir/deep.md")
	}, "expected created event for file in new subdir")
}

func TestWatcher_DeleteReported(t *testing.T) {
	vaultDir := t.TempDir()
	_ = os.WriteFile(filepath.Join(vaultDir, "del.md"), []byte("# Delete Me"), 0o644)

	rec := &eventRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, vaultDir, testLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(vaultDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:del.md")
	}, "expected deleted:del.md callback")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir := t.TempDir()
	_ = os.WriteFile(filepath.Join(vaultDir, "old.md"), []byte("# Rename"), 0o644)

	rec := &eventRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, vaultDir, testLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(vaultDir, "old.md"), filepath.Join(vaultDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:old.md") && rec.has("created:renamed.md")
	}, "rename should report old path deleted and new path created")
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	vaultDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, vaultDir, testLogger(), nil) }()
	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
