package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 1)
	w, err := New(100*time.Millisecond, []string{"__pycache__"}, []string{"conftest.py"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tmpDir); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "service.py")
	os.WriteFile(testFile, []byte("x = 1\n"), 0644)

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected to find %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for file change event")
	}

	// Non-Python and excluded files must not trigger callbacks.
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "conftest.py"), []byte("x = 1\n"), 0644)

	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			base := filepath.Base(p)
			if base == "notes.txt" || base == "conftest.py" {
				t.Errorf("excluded file %s triggered event", base)
			}
		}
	case <-time.After(500 * time.Millisecond):
		// Expected
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "pkg")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "nested.py")
	if err := os.WriteFile(subFile, []byte("y = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	foundNested := false
	timeout := time.After(2 * time.Second)
	for !foundNested {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == subFile {
					foundNested = true
					break
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for nested file event in newly created directory")
		}
	}
}

func TestWatcherSkipsExcludedDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	skipped := filepath.Join(tmpDir, "__pycache__")
	if err := os.MkdirAll(skipped, 0755); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 1)
	w, err := New(50*time.Millisecond, []string{"__pycache__"}, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tmpDir); err != nil {
		t.Fatal(err)
	}

	os.WriteFile(filepath.Join(skipped, "cached.py"), []byte("x = 1\n"), 0644)

	select {
	case paths := <-changedFiles:
		t.Errorf("expected no events from excluded directory, got %v", paths)
	case <-time.After(500 * time.Millisecond):
		// Expected
	}
}
