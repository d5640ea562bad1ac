// Package repository persists the pipeline workspace state. The engine
// defines the shape; stores only move the JSON document.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/pipeline"
)

// ErrStateNotFound is returned by Load when a workspace has never been saved.
var ErrStateNotFound = errors.New("pipeline state not found")

// StateReader loads persisted state.
type StateReader interface {
	Load(ctx context.Context, workspace string) (pipeline.State, error)
}

// StateWriter persists state.
type StateWriter interface {
	Save(ctx context.Context, workspace string, state pipeline.State) error
}

// Store is the full persistence contract for one backend.
type Store interface {
	StateReader
	StateWriter
	Name() string
}

// LoadOrEmpty loads state for workspace, falling back to the empty state on
// first run.
func LoadOrEmpty(ctx context.Context, store StateReader, workspace string) (pipeline.State, error) {
	state, err := store.Load(ctx, workspace)
	if errors.Is(err, ErrStateNotFound) {
		return pipeline.EmptyState(), nil
	}
	if err != nil {
		return pipeline.State{}, err
	}
	return state, nil
}

func encodeState(state pipeline.State) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode pipeline state: %w", err)
	}
	return raw, nil
}

// decodeState treats an empty blob the same as a missing one.
func decodeState(raw []byte) (pipeline.State, error) {
	state := pipeline.EmptyState()
	if len(raw) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return pipeline.State{}, fmt.Errorf("decode pipeline state: %w", err)
	}
	return state, nil
}
