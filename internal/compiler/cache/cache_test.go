package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestOutputCache_StoreAndLookup(t *testing.T) {
	cache := NewOutputCache()

	output := []byte("// Code generated by roundtrip-gen. DO NOT EDIT.\n")
	cache.Store("/src/point.go", "abc123", output, 2)

	entry, ok := cache.Lookup("/src/point.go", "abc123")
	if !ok {
		t.Fatalf("Lookup() missed an entry stored with the same hash")
	}
	if string(entry.Output) != string(output) {
		t.Errorf("Lookup() output = %q, want %q", entry.Output, output)
	}
	if entry.Shapes != 2 {
		t.Errorf("Lookup() shapes = %d, want 2", entry.Shapes)
	}

	if _, ok := cache.Lookup("/src/point.go", "def456"); ok {
		t.Errorf("Lookup() should miss when the content hash changed")
	}
	if _, ok := cache.Get("/src/point.go"); !ok {
		t.Errorf("Get() should find the entry regardless of hash")
	}
}

func TestOutputCache_StoreCopiesOutput(t *testing.T) {
	cache := NewOutputCache()

	output := []byte("package geo")
	cache.Store("a.go", "h", output, 1)
	output[0] = 'X'

	entry, _ := cache.Get("a.go")
	if string(entry.Output) != "package geo" {
		t.Errorf("cached output changed with the caller's buffer: %q", entry.Output)
	}
}

func TestOutputCache_Invalidate(t *testing.T) {
	cache := NewOutputCache()
	cache.Store("a.go", "1", nil, 0)
	cache.Store("b.go", "2", nil, 0)

	cache.Invalidate("a.go")
	if _, ok := cache.Get("a.go"); ok {
		t.Errorf("Invalidate() left the entry in place")
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}

	cache.InvalidateAll()
	if cache.Size() != 0 {
		t.Errorf("Size() after InvalidateAll() = %d, want 0", cache.Size())
	}
}

func TestOutputCache_Prune(t *testing.T) {
	cache := NewOutputCache()
	cache.Store("old.go", "1", nil, 0)
	cache.entries["old.go"].CachedAt = time.Now().Add(-time.Hour)
	cache.Store("new.go", "2", nil, 0)

	if pruned := cache.Prune(time.Minute); pruned != 1 {
		t.Errorf("Prune() = %d, want 1", pruned)
	}
	if _, ok := cache.Get("new.go"); !ok {
		t.Errorf("Prune() removed a fresh entry")
	}
}

func TestOutputCache_Concurrent(t *testing.T) {
	cache := NewOutputCache()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("file%d.go", i)
			cache.Store(path, "h", []byte(path), 1)
			cache.Lookup(path, "h")
			cache.Size()
		}(i)
	}
	wg.Wait()

	if cache.Size() != 16 {
		t.Errorf("Size() = %d, want 16", cache.Size())
	}
}
