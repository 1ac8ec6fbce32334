// Package session keeps study sessions alive between requests.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/thywilljoshua/studyaid/internal/study"
)

var ErrNotFound = errors.New("session not found")

// Store hands out live sessions. Get returns the same *study.Session for an id
// for as long as the store is open, so per-session locking holds across calls.
type Store interface {
	// Create starts an empty session with a fresh id.
	Create(ctx context.Context) (*study.Session, error)

	// Get returns a session by id or ErrNotFound.
	Get(ctx context.Context, id string) (*study.Session, error)

	// Save records the session's current state.
	Save(ctx context.Context, s *study.Session) error

	// Delete discards a session.
	Delete(ctx context.Context, id string) error

	// List returns the ids of known sessions.
	List(ctx context.Context) ([]string, error)

	Close() error
}

func newID() string { return ulid.Make().String() }

// MemoryStore keeps sessions for the life of the process.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*study.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*study.Session{}}
}

func (m *MemoryStore) Create(ctx context.Context) (*study.Session, error) {
	s := study.NewSession(newID())
	m.put(s)
	return s, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*study.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *study.Session) error {
	m.put(s)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) put(s *study.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *MemoryStore) cached(id string) (*study.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}
