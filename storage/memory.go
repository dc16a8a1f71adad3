package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]Blob)}
}

func (s *MemoryStore) Put(_ context.Context, name string, data []byte) (string, error) {
	key := NewKey(name)
	cp := append([]byte(nil), data...)

	s.mu.Lock()
	s.blobs[key] = Blob{Data: cp, ContentType: contentTypeFor(key, cp)}
	s.mu.Unlock()
	return refForKey(key), nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) (Blob, error) {
	key, err := KeyFromRef(ref)
	if err != nil {
		return Blob{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	key, err := KeyFromRef(ref)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
