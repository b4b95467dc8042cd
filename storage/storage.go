// Package storage persists small client-side flags.
package storage

import "sync"

// Store is a string key/value store, like window.localStorage.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

var _ Store = (*Memory)(nil)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Bool reads a flag stored as "true"/"false". Missing or other values are false.
func Bool(s Store, key string) bool {
	v, ok := s.Get(key)
	return ok && v == "true"
}

// SetBool stores a flag as "true"/"false".
func SetBool(s Store, key string, v bool) {
	if v {
		s.Set(key, "true")
		return
	}
	s.Set(key, "false")
}
