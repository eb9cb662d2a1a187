// Package memory provides a process-local implementation of core.MemoryStore,
// giving workers an optional scratch memory partitioned by a caller-chosen
// scope key, mirroring no external service.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/tripflow/core"
)

// storedMemory is the internal representation persisted by InMemoryStore.
type storedMemory struct {
	id       string
	content  string
	metadata map[string]any
}

// InMemoryStore is a naive process-local MemoryStore. It offers:
//  1. Scope keyed key/value memory (Get / Put)
//  2. Append-only stored notes with substring Search
//
// Concurrency: protected by RWMutex. Search is a linear scan with substring
// matching assigning a constant score of 1.0 to every hit. Suitable for
// single-process pipelines and tests; swap for a semantic index if retrieval
// quality ever matters.
type InMemoryStore struct {
	mu      sync.RWMutex
	memory  map[string]map[string]any // scope -> key -> value
	storage map[string][]storedMemory // scope -> ordered notes
}

// NewInMemoryStore creates a new in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		memory:  make(map[string]map[string]any),
		storage: make(map[string][]storedMemory),
	}
}

// Get returns a shallow copy of the key/value memory map for the scope.
func (m *InMemoryStore) Get(scope string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scopeMemory, exists := m.memory[scope]
	if !exists {
		return make(map[string]any), nil
	}

	result := make(map[string]any, len(scopeMemory))
	for k, v := range scopeMemory {
		result[k] = v
	}

	return result, nil
}

// Put merges the provided delta map into the scope's key/value memory.
func (m *InMemoryStore) Put(scope string, delta map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scopeMemory, exists := m.memory[scope]
	if !exists {
		scopeMemory = make(map[string]any)
		m.memory[scope] = scopeMemory
	}

	for k, v := range delta {
		scopeMemory[k] = v
	}

	return nil
}

// Store appends a note with metadata to the scope's memory.
func (m *InMemoryStore) Store(scope, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := m.storage[scope]
	m.storage[scope] = append(notes, storedMemory{
		id:       fmt.Sprintf("mem_%d", len(notes)+1),
		content:  content,
		metadata: metadata,
	})

	return nil
}

// Search returns stored notes containing the query substring, newest last,
// capped at limit (0 means no cap).
func (m *InMemoryStore) Search(scope, query string, limit int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []core.SearchResult
	for _, note := range m.storage[scope] {
		if !strings.Contains(note.content, query) {
			continue
		}
		results = append(results, core.SearchResult{
			ID:       note.id,
			Content:  note.content,
			Score:    1.0,
			Metadata: note.metadata,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results, nil
}
