package repository

import (
	"context"
	"sync"

	"leadflow_backend/internal/leads/pipeline"
)

// MemoryStore keeps encoded state per workspace in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Load(_ context.Context, workspace string) (pipeline.State, error) {
	s.mu.RLock()
	raw, ok := s.blobs[workspace]
	s.mu.RUnlock()
	if !ok {
		return pipeline.State{}, ErrStateNotFound
	}
	return decodeState(raw)
}

func (s *MemoryStore) Save(_ context.Context, workspace string, state pipeline.State) error {
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[workspace] = raw
	s.mu.Unlock()
	return nil
}
