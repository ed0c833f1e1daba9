package cache

import "sync"

// Store is the facade the dispatcher's handlers talk to. Invalidate marks
// everything under the prefix stale; the store owns the refetch policy,
// the handlers never do.
type Store interface {
	Get(key Key) (any, bool)
	Set(key Key, value any)
	Invalidate(prefix Key)
}

// StaleFunc is notified once per invalidated key so an embedding
// application can schedule a refetch.
type StaleFunc func(key Key)

// Memory is the in-process Store implementation. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	onStale StaleFunc
}

type entry struct {
	key   Key
	value any
}

// Option configures a Memory store.
type Option func(*Memory)

// WithStaleFunc installs the stale-notification callback.
func WithStaleFunc(fn StaleFunc) Option {
	return func(m *Memory) {
		m.onStale = fn
	}
}

// NewMemory creates an empty in-process store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the value cached under key.
func (m *Memory) Get(key Key) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, replacing any existing entry.
func (m *Memory) Set(key Key, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key.String()] = entry{key: key, value: value}
}

// Invalidate drops every entry whose key starts with prefix and notifies
// the stale callback for each. Invalidating an already-empty prefix is a
// no-op, so repeated invalidation has no extra observable effect.
func (m *Memory) Invalidate(prefix Key) {
	m.mu.Lock()
	var stale []Key
	for id, e := range m.entries {
		if e.key.HasPrefix(prefix) {
			stale = append(stale, e.key)
			delete(m.entries, id)
		}
	}
	onStale := m.onStale
	m.mu.Unlock()

	if onStale == nil {
		return
	}
	for _, key := range stale {
		onStale(key)
	}
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
