// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package session owns the authenticated state of the console.

The state is split in two so that it can be built before the request pipeline
exists:

  - [State] holds token, user ID, profile and the logged-in flag, mirrors them
    into the durable [storage.SessionStore], and knows how to log out. It is
    created once by [Hydrate] at startup.
  - [Manager] adds the operations that need the remote API (login and the
    profile fetch). It is created after the API wrappers, on top of a State.

# Invariant

IsLoggedIn is true exactly when the token is non-empty. Both are always
written under the same lock.

# Ownership

State is the only writer of the session keys in the store.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/storage"
)

// Snapshot is a consistent copy of the session at one instant.
type Snapshot struct {
	Token      string           `json:"-"`
	UserID     domain.ID        `json:"userId,omitempty"`
	UserInfo   *domain.UserInfo `json:"userInfo,omitempty"`
	IsLoggedIn bool             `json:"isLoggedIn"`
}

// State is the in-memory session backed by a durable store.
//
// # Concurrency
//
// All methods are safe for concurrent use.
type State struct {
	store  *storage.SessionStore
	logger *slog.Logger

	mu       sync.RWMutex
	token    string
	userID   domain.ID
	userInfo *domain.UserInfo
	loggedIn bool
}

// Hydrate builds the session from whatever the store holds.
//
// A profile that no longer parses is treated as absent: the key is removed and
// a warning is logged. Backend failures are returned.
func Hydrate(ctx context.Context, store *storage.SessionStore, logger *slog.Logger) (*State, error) {
	if logger == nil {
		logger = slog.Default()
	}

	token, err := store.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: hydrate token: %w", err)
	}

	userID, err := store.GetUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: hydrate user id: %w", err)
	}

	userInfo, err := store.GetUserInfo(ctx)
	switch {
	case errors.Is(err, storage.ErrCorruptRecord):
		logger.WarnContext(ctx, "session_profile_discarded", slog.Any("error", err))
		if removeErr := store.RemoveUserInfo(ctx); removeErr != nil {
			return nil, fmt.Errorf("session: drop corrupt profile: %w", removeErr)
		}
		userInfo = nil
	case err != nil:
		return nil, fmt.Errorf("session: hydrate profile: %w", err)
	}

	logger.DebugContext(ctx, "session_hydrated",
		slog.Bool("logged_in", token != ""),
		slog.Bool("has_profile", userInfo != nil),
	)

	return &State{
		store:    store,
		logger:   logger,
		token:    token,
		userID:   userID,
		userInfo: userInfo,
		loggedIn: token != "",
	}, nil
}

// # Accessors

// Token returns the bearer token, or "" when logged out.
func (state *State) Token() string {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.token
}

// UserID returns the identifier stored at login.
func (state *State) UserID() domain.ID {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.userID
}

// UserInfo returns a copy of the cached profile, or nil when not loaded.
func (state *State) UserInfo() *domain.UserInfo {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.userInfo.Clone()
}

// IsLoggedIn reports whether a token is held.
func (state *State) IsLoggedIn() bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.loggedIn
}

// Snapshot returns all fields read under one lock.
func (state *State) Snapshot() Snapshot {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return Snapshot{
		Token:      state.token,
		UserID:     state.userID,
		UserInfo:   state.userInfo.Clone(),
		IsLoggedIn: state.loggedIn,
	}
}

// # Mutations

// Logout resets the in-memory session and clears the store.
//
// It makes no network call and is idempotent. Memory is reset even when the
// store fails; the store error is returned.
func (state *State) Logout(ctx context.Context) error {
	state.mu.Lock()
	wasLoggedIn := state.loggedIn
	state.token = ""
	state.userID = ""
	state.userInfo = nil
	state.loggedIn = false
	state.mu.Unlock()

	if err := state.store.Clear(ctx); err != nil {
		return fmt.Errorf("session: clear store: %w", err)
	}

	if wasLoggedIn {
		state.logger.InfoContext(ctx, "session_logged_out")
	}
	return nil
}

// establish records a fresh login: token first, then the user ID.
func (state *State) establish(ctx context.Context, token string, userID domain.ID) error {
	state.mu.Lock()
	state.token = token
	state.userID = userID
	state.userInfo = nil
	state.loggedIn = true
	state.mu.Unlock()

	if err := state.store.SetToken(ctx, token); err != nil {
		return fmt.Errorf("session: persist token: %w", err)
	}
	if err := state.store.SetUserID(ctx, userID); err != nil {
		return fmt.Errorf("session: persist user id: %w", err)
	}
	return nil
}

// setUserInfo caches info if the session still holds forToken.
//
// A profile fetched for a session that has since logged out or logged in
// again is dropped. It reports whether info was kept.
func (state *State) setUserInfo(ctx context.Context, forToken string, info *domain.UserInfo) (bool, error) {
	state.mu.Lock()
	if !state.loggedIn || state.token != forToken {
		state.mu.Unlock()
		return false, nil
	}
	state.userInfo = info.Clone()
	state.mu.Unlock()

	if err := state.store.SetUserInfo(ctx, info); err != nil {
		return true, fmt.Errorf("session: persist profile: %w", err)
	}
	return true, nil
}
