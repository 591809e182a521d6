package recovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	f, err := os.CreateTemp("", "*.log")
	if err != nil {
		t.Fatal(err)
	}
	name := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(name) })

	m, err := NewManager(name)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestLogEvictAndTail(t *testing.T) {
	m := newTestManager(t)
	if err := m.LogEvict(100, 4096); err != nil {
		t.Fatalf("LogEvict: %v", err)
	}
	if err := m.LogEvict(200, 4096); err != nil {
		t.Fatalf("LogEvict: %v", err)
	}
	lines, err := m.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Tail returned %d lines, want 2", len(lines))
	}
	if want := evictLog{addr: 100, size: 4096}.toString(); lines[0]+"\n" != want {
		t.Fatalf("lines[0] = %q, want %q", lines[0], want)
	}
}

func TestLogWarningSanitizesCause(t *testing.T) {
	m := newTestManager(t)
	cause := errors.New("tracker failed: <bad> state\nwith a newline")
	if err := m.LogWarning(42, cause); err != nil {
		t.Fatalf("LogWarning: %v", err)
	}
	lines, err := m.Tail(1)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Tail returned %d lines, want 1", len(lines))
	}
	l, err := logFromString(lines[0])
	if err != nil {
		t.Fatalf("logFromString(%q): %v", lines[0], err)
	}
	wl, ok := l.(warnLog)
	if !ok {
		t.Fatalf("parsed log = %T, want warnLog", l)
	}
	if wl.pageID != 42 {
		t.Fatalf("pageID = %d, want 42", wl.pageID)
	}
}

func TestCheckpointSnapshotsDirectory(t *testing.T) {
	m := newTestManager(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.db"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.Checkpoint(dir, 7, 4096); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	recoveryDir := dir + "-recovery"
	t.Cleanup(func() { os.RemoveAll(recoveryDir) })
	snapshot, err := os.ReadFile(filepath.Join(recoveryDir, "data.db"))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if string(snapshot) != "hello" {
		t.Fatalf("snapshot content = %q, want %q", snapshot, "hello")
	}

	rootAddr, rootSize, found, err := m.LastCheckpoint()
	if err != nil {
		t.Fatalf("LastCheckpoint: %v", err)
	}
	if !found {
		t.Fatal("LastCheckpoint: found = false, want true")
	}
	if rootAddr != 7 || rootSize != 4096 {
		t.Fatalf("LastCheckpoint = (%d, %d), want (7, 4096)", rootAddr, rootSize)
	}
}
