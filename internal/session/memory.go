package session

import (
	"context"
	"sync"
)

// MemorySnapshots is a process-local SnapshotStore.
type MemorySnapshots struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{sessions: map[string]Session{}}
}

func (m *MemorySnapshots) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *MemorySnapshots) Load(_ context.Context, token string) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	return s, ok, nil
}

func (m *MemorySnapshots) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemorySnapshots) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = map[string]Session{}
	return nil
}
