package cache

import (
	"sync"
	"time"
)

// Entry is the last generated output of one input file
type Entry struct {
	Input    string
	Hash     string
	Output   []byte
	Shapes   int
	CachedAt time.Time
}

// OutputCache remembers generated outputs by input path. It is safe for
// concurrent use by generation passes.
type OutputCache struct {
	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewOutputCache creates an empty cache
func NewOutputCache() *OutputCache {
	return &OutputCache{
		entries: make(map[string]*Entry),
	}
}

// Lookup returns the entry for input if it was generated from content with
// the given hash.
func (oc *OutputCache) Lookup(input, hash string) (*Entry, bool) {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	entry, ok := oc.entries[input]
	if !ok || entry.Hash != hash {
		return nil, false
	}
	return entry, true
}

// Get returns the entry for input regardless of its hash
func (oc *OutputCache) Get(input string) (*Entry, bool) {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	entry, ok := oc.entries[input]
	return entry, ok
}

// Store records the output generated for input
func (oc *OutputCache) Store(input, hash string, output []byte, shapes int) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	oc.entries[input] = &Entry{
		Input:    input,
		Hash:     hash,
		Output:   append([]byte(nil), output...),
		Shapes:   shapes,
		CachedAt: time.Now(),
	}
}

// Invalidate removes an entry from the cache
func (oc *OutputCache) Invalidate(input string) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	delete(oc.entries, input)
}

// InvalidateAll clears the entire cache
func (oc *OutputCache) InvalidateAll() {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	oc.entries = make(map[string]*Entry)
}

// Size returns the number of cached entries
func (oc *OutputCache) Size() int {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	return len(oc.entries)
}

// Prune removes entries stored longer than maxAge ago
func (oc *OutputCache) Prune(maxAge time.Duration) int {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	now := time.Now()
	pruned := 0
	for input, entry := range oc.entries {
		if now.Sub(entry.CachedAt) > maxAge {
			delete(oc.entries, input)
			pruned++
		}
	}
	return pruned
}
