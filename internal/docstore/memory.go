package docstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps documents in process memory. It backs tests and is the
// ephemeral backend when no redis address is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]map[string]map[string]json.RawMessage // owner -> collection -> id -> data
	failErr error
	writes  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]map[string]json.RawMessage),
	}
}

func (s *MemoryStore) GetDocument(_ context.Context, owner string, collection string, id string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, unavailable("get", collection, id, s.failErr)
	}
	data, ok := s.docs[owner][collection][id]
	if !ok {
		return nil, nil
	}
	return cloneRaw(data), nil
}

func (s *MemoryStore) SetDocument(_ context.Context, owner string, collection string, id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return unavailable("set", collection, id, s.failErr)
	}
	if s.docs[owner] == nil {
		s.docs[owner] = make(map[string]map[string]json.RawMessage)
	}
	if s.docs[owner][collection] == nil {
		s.docs[owner][collection] = make(map[string]json.RawMessage)
	}
	s.docs[owner][collection][id] = cloneRaw(data)
	s.writes++
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, owner string, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return unavailable("delete", collection, id, s.failErr)
	}
	if _, ok := s.docs[owner][collection][id]; ok {
		delete(s.docs[owner][collection], id)
		s.writes++
	}
	return nil
}

func (s *MemoryStore) ListAllDocuments(_ context.Context, owner string, collection string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, unavailable("list", collection, "*", s.failErr)
	}
	result := make(map[string]json.RawMessage, len(s.docs[owner][collection]))
	for id, data := range s.docs[owner][collection] {
		result[id] = cloneRaw(data)
	}
	return result, nil
}

// SetFailure makes every following call fail with ErrStorageUnavailable wrapping err.
// Passing nil restores normal operation.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Writes returns the number of successful set and delete calls.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]map[string]map[string]json.RawMessage)
	s.failErr = nil
	s.writes = 0
}

func cloneRaw(data json.RawMessage) json.RawMessage {
	if data == nil {
		return nil
	}
	return append(json.RawMessage(nil), data...)
}
