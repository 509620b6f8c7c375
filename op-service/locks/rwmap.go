package locks

import (
	"sync"
)

// RWMap is a map guarded by a single read-write lock.
// The zero value is ready for use.
type RWMap[K comparable, V any] struct {
	inner map[K]V
	mu    sync.RWMutex
}

// CreateIfMissing creates a value at the given key, if the key is not set yet.
// It reports whether a new value was inserted; fn only runs in that case.
func (m *RWMap[K, V]) CreateIfMissing(key K, fn func() V) (changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inner == nil {
		m.inner = make(map[K]V)
	}
	_, ok := m.inner[key]
	if !ok {
		m.inner[key] = fn()
	}
	return !ok
}

// GetOrCreate returns the value at key, creating it with fn first if it is missing.
func (m *RWMap[K, V]) GetOrCreate(key K, fn func() V) V {
	m.mu.RLock()
	v, ok := m.inner[key]
	m.mu.RUnlock()
	if ok {
		return v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inner == nil {
		m.inner = make(map[K]V)
	}
	if v, ok := m.inner[key]; ok {
		return v
	}
	v = fn()
	m.inner[key] = v
	return v
}

func (m *RWMap[K, V]) Has(key K) (ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok = m.inner[key]
	return
}

func (m *RWMap[K, V]) Get(key K) (value V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok = m.inner[key]
	return
}

func (m *RWMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inner)
}

func (m *RWMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inner, key)
}

// DeleteFunc removes every entry for which del returns true, and returns how many were removed.
func (m *RWMap[K, V]) DeleteFunc(del func(key K, value V) bool) (n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.inner {
		if del(k, v) {
			delete(m.inner, k)
			n++
		}
	}
	return n
}

// Keys returns an unsorted list of keys of the map.
func (m *RWMap[K, V]) Keys() (out []K) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out = make([]K, 0, len(m.inner))
	for k := range m.inner {
		out = append(out, k)
	}
	return out
}
