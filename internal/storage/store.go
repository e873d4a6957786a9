// Copyright (c) 2026 RootLink. All rights reserved.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

// ErrCorruptRecord is returned when a stored value cannot be decoded.
var ErrCorruptRecord = errors.New("storage: corrupt session record")

// SessionStore exposes the three persisted session keys.
//
// # Atomicity
//
// Keys are written independently. Only [SessionStore.Clear] touches all of
// them in one call, and even then a crash midway may leave some keys behind.
// The in-memory session is the source of truth while the process runs.
type SessionStore struct {
	backend Backend
}

// NewSessionStore wraps backend with typed session accessors.
func NewSessionStore(backend Backend) *SessionStore {
	return &SessionStore{backend: backend}
}

// # Token

// SetToken persists the credential token.
func (store *SessionStore) SetToken(ctx context.Context, token string) error {
	return store.set(ctx, constants.StorageKeyToken, token)
}

// GetToken returns the persisted token, or "" when absent.
func (store *SessionStore) GetToken(ctx context.Context) (string, error) {
	return store.get(ctx, constants.StorageKeyToken)
}

// RemoveToken deletes the persisted token.
func (store *SessionStore) RemoveToken(ctx context.Context) error {
	return store.remove(ctx, constants.StorageKeyToken)
}

// # User ID

// SetUserID persists the user identifier returned by login.
func (store *SessionStore) SetUserID(ctx context.Context, userID domain.ID) error {
	return store.set(ctx, constants.StorageKeyUserID, userID.String())
}

// GetUserID returns the persisted user identifier, or "" when absent.
func (store *SessionStore) GetUserID(ctx context.Context) (domain.ID, error) {
	value, err := store.get(ctx, constants.StorageKeyUserID)
	return domain.ID(value), err
}

// RemoveUserID deletes the persisted user identifier.
func (store *SessionStore) RemoveUserID(ctx context.Context) error {
	return store.remove(ctx, constants.StorageKeyUserID)
}

// # User Info

// SetUserInfo serializes and persists the cached profile.
func (store *SessionStore) SetUserInfo(ctx context.Context, info *domain.UserInfo) error {
	encoded, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("storage: encode user info: %w", err)
	}
	return store.set(ctx, constants.StorageKeyUserInfo, string(encoded))
}

// GetUserInfo returns the cached profile.
//
// It returns (nil, nil) when nothing is stored and an error wrapping
// [ErrCorruptRecord] when the stored value is not a valid profile.
func (store *SessionStore) GetUserInfo(ctx context.Context) (*domain.UserInfo, error) {
	raw, err := store.get(ctx, constants.StorageKeyUserInfo)
	if err != nil || raw == "" {
		return nil, err
	}

	var info *domain.UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, constants.StorageKeyUserInfo, err)
	}
	return info, nil
}

// RemoveUserInfo deletes the cached profile.
func (store *SessionStore) RemoveUserInfo(ctx context.Context) error {
	return store.remove(ctx, constants.StorageKeyUserInfo)
}

// # Bulk

// Clear removes the token, the user id and the profile.
func (store *SessionStore) Clear(ctx context.Context) error {
	return store.remove(ctx,
		constants.StorageKeyToken,
		constants.StorageKeyUserID,
		constants.StorageKeyUserInfo,
	)
}

func (store *SessionStore) set(ctx context.Context, key, value string) error {
	if err := store.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

func (store *SessionStore) get(ctx context.Context, key string) (string, error) {
	value, _, err := store.backend.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, nil
}

func (store *SessionStore) remove(ctx context.Context, keys ...string) error {
	if err := store.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("storage: delete %v: %w", keys, err)
	}
	return nil
}
