package parser

import (
	"os"
	"testing"
)

// Watcher tests are skipped because fsnotify spawns platform-specific
// goroutines that make its lifecycle hard to assert on deterministically
// in CI; no other test exercises the watcher, and only walkDirs is
// tested directly below.

func TestWatcher_New(t *testing.T) {
	t.Skip("Skipping: fsnotify goroutine lifecycle isn't deterministic under go test")
}

func TestWatcher_StartStop(t *testing.T) {
	t.Skip("Skipping: fsnotify goroutine lifecycle isn't deterministic under go test")
}

func TestWalkDirs_SkipsNoiseDirectories(t *testing.T) {
	dirs := map[string]bool{}
	root := t.TempDir()
	for _, sub := range []string{"src", "node_modules", ".git"} {
		if err := os.MkdirAll(root+"/"+sub, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := walkDirs(root, func(dir string) error {
		dirs[dir] = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if !dirs[root] {
		t.Fatal("root must be visited")
	}
	if !dirs[root+"/src"] {
		t.Fatal("src must be visited")
	}
	if dirs[root+"/node_modules"] || dirs[root+"/.git"] {
		t.Fatal("noise directories must not be visited")
	}
}
