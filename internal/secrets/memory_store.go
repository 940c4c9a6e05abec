package secrets

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps credentials for the lifetime of the process
type MemoryStore struct {
	mu     sync.RWMutex
	values map[CredentialType]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[CredentialType]string)}
}

func (s *MemoryStore) Store(ctx context.Context, credential CredentialType, value string) error {
	if err := checkArgs(credential); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return ErrEmptyValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[credential] = value
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, credential CredentialType) (string, error) {
	if err := checkArgs(credential); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[credential]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemoryStore) Delete(ctx context.Context, credential CredentialType) error {
	if err := checkArgs(credential); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[credential]; !ok {
		return ErrNotFound
	}
	delete(s.values, credential)
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, credential CredentialType) (bool, error) {
	if err := checkArgs(credential); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[credential]
	return ok, nil
}
