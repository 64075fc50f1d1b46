package session

// LockCount reports the number of live lock entries.
func LockCount(m *Manager) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
