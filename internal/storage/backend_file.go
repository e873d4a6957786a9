// Copyright (c) 2026 RootLink. All rights reserved.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend persists all keys as one JSON object in a single file.
//
// Every mutation rewrites the file through a temporary sibling and a rename,
// so readers never observe a half-written document.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileBackend opens (or lazily creates) the session file at path.
//
// A missing file is an empty store. A file that is not a JSON object of
// strings is an error: the caller decides whether to delete it.
func NewFileBackend(path string) (*FileBackend, error) {
	backend := &FileBackend{path: path, values: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return backend, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}

	if len(raw) == 0 {
		return backend, nil
	}
	if err := json.Unmarshal(raw, &backend.values); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", path, err)
	}
	if backend.values == nil {
		backend.values = make(map[string]string)
	}
	return backend, nil
}

// Path returns the location of the session file.
func (backend *FileBackend) Path() string { return backend.path }

// Get implements [Backend].
func (backend *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	value, ok := backend.values[key]
	return value, ok, nil
}

// Set implements [Backend].
func (backend *FileBackend) Set(_ context.Context, key, value string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	previous, existed := backend.values[key]
	backend.values[key] = value

	if err := backend.flush(); err != nil {
		// Keep memory consistent with what is on disk.
		if existed {
			backend.values[key] = previous
		} else {
			delete(backend.values, key)
		}
		return err
	}
	return nil
}

// Delete implements [Backend].
func (backend *FileBackend) Delete(_ context.Context, keys ...string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	removed := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := backend.values[key]; ok {
			removed[key] = value
			delete(backend.values, key)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	if err := backend.flush(); err != nil {
		for key, value := range removed {
			backend.values[key] = value
		}
		return err
	}
	return nil
}

// flush writes the current map to disk. Callers hold mu.
func (backend *FileBackend) flush() error {
	encoded, err := json.MarshalIndent(backend.values, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode session file: %w", err)
	}

	dir := filepath.Dir(backend.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("storage: create %s: %w", dir, err)
	}

	temp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tempPath := temp.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := temp.Write(encoded); err != nil {
		temp.Close()
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := temp.Chmod(0o600); err != nil {
		temp.Close()
		return fmt.Errorf("storage: chmod temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}

	if err := os.Rename(tempPath, backend.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", backend.path, err)
	}
	return nil
}
