package storage

import (
	"context"
	"sync"

	"github.com/attestd/cloud-secure-area/interfaces"
)

// MemoryStore implements an in-process key store. Used in tests and for
// ephemeral development deployments; records do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[interfaces.RecordLocator][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[interfaces.RecordLocator][]byte)}
}

// Get retrieves the record at the locator.
func (s *MemoryStore) Get(ctx context.Context, locator interfaces.RecordLocator) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.records[locator]
	if !ok {
		return nil, interfaces.ErrRecordNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Insert writes a record only if none exists at the locator. The map mutex
// makes the check and the write atomic.
func (s *MemoryStore) Insert(ctx context.Context, locator interfaces.RecordLocator, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[locator]; ok {
		return interfaces.ErrRecordExists
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[locator] = stored
	return nil
}

// Available always reports true for the in-memory store.
func (s *MemoryStore) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this store.
func (s *MemoryStore) Name() string {
	return "memory"
}

// LocationURI returns the URI that identifies this store.
func (s *MemoryStore) LocationURI() string {
	return "mem://"
}
