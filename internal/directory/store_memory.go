package directory

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory directory for tests and early development.
// It enforces workspace isolation on reads.
type MemoryStore struct {
	mu sync.RWMutex

	numberToWorkspace map[string]string
	credentials       map[string]Credentials
	forwarding        map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		numberToWorkspace: map[string]string{},
		credentials:       map[string]Credentials{},
		forwarding:        map[string][]string{},
	}
}

func (s *MemoryStore) AddNumber(number, workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numberToWorkspace[number] = workspaceID
}

func (s *MemoryStore) SetCredentials(workspaceID string, creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[workspaceID] = creds
}

func (s *MemoryStore) SetForwardingNumbers(workspaceID string, numbers []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwarding[workspaceID] = append([]string(nil), numbers...)
}

func (s *MemoryStore) ResolveWorkspace(ctx context.Context, dialedNumber string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wid, ok := s.numberToWorkspace[dialedNumber]
	if !ok {
		return "", ErrNotFound
	}
	return wid, nil
}

func (s *MemoryStore) Credentials(ctx context.Context, workspaceID string) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[workspaceID]
	if !ok {
		return Credentials{}, ErrNotFound
	}
	return creds, nil
}

func (s *MemoryStore) ForwardingNumbers(ctx context.Context, workspaceID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.forwarding[workspaceID]...), nil
}
