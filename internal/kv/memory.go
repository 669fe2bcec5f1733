package kv

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Snapshot returns a copy of every stored entry.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}

// MemoryBackend keeps one Memory store per visitor.
type MemoryBackend struct {
	mu     sync.Mutex
	stores map[string]*Memory
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{stores: make(map[string]*Memory)}
}

// Scope implements Backend.
func (b *MemoryBackend) Scope(visitor string) Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stores[visitor]
	if !ok {
		s = NewMemory()
		b.stores[visitor] = s
	}
	return s
}
