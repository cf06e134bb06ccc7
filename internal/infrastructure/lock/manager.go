// Package lock provides the in-process keyed lock manager backing the
// admission protocol's per-client exclusive locks.
package lock

import "sync"

// Manager hands out one mutex per client id. Mutexes are created on demand
// and kept for the life of the process; the map is bounded by the number of
// distinct clients seen.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{locks: make(map[string]*sync.Mutex)}
}

func (m *Manager) get(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// LockPair acquires exclusive locks on both ids in ascending id order,
// regardless of argument order. The fixed global ordering is the deadlock
// avoidance mechanism: two admissions referencing the same pair in swapped
// roles contend on the same first lock instead of waiting on each other.
// The returned release function unlocks in reverse order.
func (m *Manager) LockPair(a, b string) (release func()) {
	if a == b {
		l := m.get(a)
		l.Lock()
		return l.Unlock
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	fl, sl := m.get(first), m.get(second)
	fl.Lock()
	sl.Lock()
	return func() {
		sl.Unlock()
		fl.Unlock()
	}
}
