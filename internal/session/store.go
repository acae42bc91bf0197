// Package session provides storage backends for contract sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store persists contract sessions. Update applies a typed mutation under
// a per-session lock; there is no free-form field update.
type Store interface {
	Create(ctx context.Context, contractText string) (*contract.Session, error)
	Get(ctx context.Context, id string) (*contract.Session, error)
	List(ctx context.Context) ([]*contract.Session, error)
	Update(ctx context.Context, id string, fn func(*contract.Session) error) (*contract.Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory, in insertion order.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	order   []string
}

type memoryEntry struct {
	mu      sync.Mutex
	session *contract.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Create(_ context.Context, contractText string) (*contract.Session, error) {
	now := time.Now().UTC()
	sess := &contract.Session{
		ID:           uuid.NewString(),
		ContractText: contractText,
		Stage:        contract.StageIntake,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	s.entries[sess.ID] = &memoryEntry{session: sess}
	s.order = append(s.order, sess.ID)
	s.mu.Unlock()

	return sess.Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*contract.Session, error) {
	entry, ok := s.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*contract.Session, error) {
	s.mu.Lock()
	order := append([]string(nil), s.order...)
	s.mu.Unlock()

	sessions := make([]*contract.Session, 0, len(order))
	for _, id := range order {
		entry, ok := s.entry(id)
		if !ok {
			continue
		}
		entry.mu.Lock()
		sessions = append(sessions, entry.session.Clone())
		entry.mu.Unlock()
	}
	return sessions, nil
}

// Update clones the stored session, applies fn, and swaps the clone in on
// success. A failing fn leaves the stored state untouched.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*contract.Session) error) (*contract.Session, error) {
	entry, ok := s.entry(id)
	if !ok {
		return nil, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	entry.session = working
	return working.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return nil
	}
	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) entry(id string) (*memoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	return entry, ok
}
