// internal/cache/memo.go
package cache

import "sync"

// Memo memoizes values by key while its session is active. Outside a session
// every Get calls compute.
type Memo[K comparable, V any] struct {
	session *Session
	mu      sync.Mutex
	values  map[K]V
}

// NewMemo creates a memo bound to s. The memo is emptied whenever s ends.
func NewMemo[K comparable, V any](s *Session) *Memo[K, V] {
	m := &Memo[K, V]{session: s, values: make(map[K]V)}
	s.register(m.Clear)
	return m
}

// Get returns the memoized value for key, computing it on a miss. compute
// runs without the memo locked, so it may use other memos or this one.
func (m *Memo[K, V]) Get(key K, compute func() V) V {
	if !m.session.Active() {
		return compute()
	}
	m.mu.Lock()
	v, ok := m.values[key]
	m.mu.Unlock()
	if ok {
		return v
	}

	v = compute()
	if m.session.Active() {
		m.mu.Lock()
		m.values[key] = v
		m.mu.Unlock()
	}
	return v
}

// Len returns the number of memoized entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// Clear drops every entry.
func (m *Memo[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
}
