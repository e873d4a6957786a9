// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package storage provides the durable key/value storage behind the client session.

It plays the part of the browser's origin-scoped local storage: a handful of
string keys that survive process restarts.

Architecture:

  - Backend: raw string storage (file on disk, Redis, or memory).
  - SessionStore: typed accessors for the token, user id and cached profile.

Only the session manager writes through a SessionStore.
*/
package storage

import (
	"context"
	"sync"
)

// Backend is a string-valued key/value store.
//
// Implementations must treat Delete of a missing key as success.
type Backend interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
}

// # Memory Backend

// MemoryBackend keeps values in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty [MemoryBackend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Get implements [Backend].
func (backend *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()

	value, ok := backend.values[key]
	return value, ok, nil
}

// Set implements [Backend].
func (backend *MemoryBackend) Set(_ context.Context, key, value string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	backend.values[key] = value
	return nil
}

// Delete implements [Backend].
func (backend *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	for _, key := range keys {
		delete(backend.values, key)
	}
	return nil
}

// Len reports how many keys are stored.
func (backend *MemoryBackend) Len() int {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	return len(backend.values)
}
