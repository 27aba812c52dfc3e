package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitForBatch(t *testing.T, batches <-chan []string, want string) []string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case files := <-batches:
			for _, f := range files {
				if f == want {
					return files
				}
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", want)
			return nil
		}
	}
}

func TestFileWatcher_Start(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "point.go")
	if err := os.WriteFile(testFile, []byte("package geo\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	batches := make(chan []string, 16)
	watcher, err := NewFileWatcher([]string{tmpDir}, 20*time.Millisecond,
		func(path string) bool { return strings.HasSuffix(path, ".go") },
		func(files []string) error {
			batches <- files
			return nil
		},
		zaptest.NewLogger(t),
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := os.WriteFile(testFile, []byte("package geo\n\n// changed\n"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}
	waitForBatch(t, batches, testFile)
}

func TestFileWatcher_FiltersFiles(t *testing.T) {
	tmpDir := t.TempDir()

	batches := make(chan []string, 16)
	watcher, err := NewFileWatcher([]string{tmpDir}, 20*time.Millisecond,
		func(path string) bool { return strings.HasSuffix(path, ".go") },
		func(files []string) error {
			batches <- files
			return nil
		},
		zaptest.NewLogger(t),
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	notes := filepath.Join(tmpDir, "notes.txt")
	source := filepath.Join(tmpDir, "a.go")
	if err := os.WriteFile(notes, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(source, []byte("package a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	files := waitForBatch(t, batches, source)
	for _, f := range files {
		if f == notes {
			t.Errorf("filtered file %s was reported", notes)
		}
	}
}

func TestFileWatcher_WatchesNewDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	batches := make(chan []string, 16)
	watcher, err := NewFileWatcher([]string{tmpDir}, 20*time.Millisecond, nil,
		func(files []string) error {
			batches <- files
			return nil
		},
		zaptest.NewLogger(t),
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	sub := filepath.Join(tmpDir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	// The directory is added asynchronously; keep touching the file until the
	// watcher picks it up.
	nested := filepath.Join(sub, "b.go")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := os.WriteFile(nested, []byte("package sub\n"), 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case files := <-batches:
			for _, f := range files {
				if f == nested {
					return
				}
			}
		case <-time.After(100 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatalf("no change reported for %s", nested)
		}
	}
}

func TestSkipDir(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"geo", false},
		{".git", true},
		{"_examples", true},
		{"vendor", true},
		{"testdata", true},
	}

	for _, tt := range tests {
		if got := skipDir(tt.name); got != tt.expected {
			t.Errorf("skipDir(%q) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	defer debouncer.Stop()
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})

	debouncer.Add("file2.go")
	debouncer.Add("file1.go")
	debouncer.Add("file2.go") // Duplicate

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if !called {
		t.Fatal("Expected callback to be called")
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 unique files, got %d", len(files))
	}
	if files[0] != "file1.go" || files[1] != "file2.go" {
		t.Errorf("Expected sorted files, got %v", files)
	}
}

func TestDebouncer_MultipleFlushes(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(30 * time.Millisecond)
	defer debouncer.Stop()
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	})

	debouncer.Add("file1.go")
	time.Sleep(100 * time.Millisecond)

	debouncer.Add("file2.go")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if callCount != 2 {
		t.Errorf("Expected 2 callback calls, got %d", callCount)
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var mu sync.Mutex
	var called bool

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	debouncer.Add("file1.go")
	debouncer.Stop()
	debouncer.Add("file2.go")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("Expected no callback after Stop")
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	watcher, err := NewFileWatcher([]string{t.TempDir()}, 0, nil,
		func(files []string) error { return nil }, nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	// Second stop is a no-op
	if err := watcher.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
}

func BenchmarkDebouncer_Add(b *testing.B) {
	debouncer := NewDebouncer(100 * time.Millisecond)
	defer debouncer.Stop()
	debouncer.SetCallback(func(files []string) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		debouncer.Add("file.go")
	}
}
