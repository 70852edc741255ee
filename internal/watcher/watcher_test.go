package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const quiescence = 100 * time.Millisecond

func startWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	w, err := New(root, map[string]struct{}{".git": {}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx, quiescence)
	return w, root
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func expectSignal(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal")
	}
}

func expectQuiet(t *testing.T, w *Watcher, window time.Duration) {
	t.Helper()
	select {
	case <-w.Changed:
		t.Fatal("unexpected change signal")
	case <-time.After(window):
	}
}

func TestBurstCoalescesIntoOneSignal(t *testing.T) {
	w, root := startWatcher(t)

	write(t, root, "a.json", `{"loss": 0.5}`)
	write(t, root, "b.json", `{"loss": 0.9}`)
	write(t, root, "c.json", `{"loss": 0.1}`)

	expectSignal(t, w)
	// The burst already fired; a quiescent tree stays silent.
	expectQuiet(t, w, 4*quiescence)
}

func TestSeparateBurstsSignalSeparately(t *testing.T) {
	w, root := startWatcher(t)

	write(t, root, "a.json", `{"loss": 0.5}`)
	expectSignal(t, w)

	write(t, root, "b.json", `{"loss": 0.9}`)
	expectSignal(t, w)
}

func TestIgnoredDirChangesDoNotSignal(t *testing.T) {
	w, root := startWatcher(t)

	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	write(t, root, ".git/HEAD", "ref: refs/heads/main")

	expectQuiet(t, w, 6*quiescence)
}

func TestNewDirectoriesAreWatched(t *testing.T) {
	w, root := startWatcher(t)

	if err := os.Mkdir(filepath.Join(root, "run"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	expectSignal(t, w)

	// The directory created after startup must itself be watched.
	write(t, root, "run/a.json", `{"loss": 0.5}`)
	expectSignal(t, w)
}
