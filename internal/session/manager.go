// Copyright (c) 2026 RootLink. All rights reserved.

package session

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

// Gateway is the part of the remote API the session needs.
type Gateway interface {
	// Login exchanges credentials for a token.
	Login(ctx context.Context, credentials domain.Credentials) (*domain.LoginResult, error)

	// CurrentUser returns the profile of the token holder.
	CurrentUser(ctx context.Context) (*domain.UserInfo, error)
}

// profileFlight prefixes the single-flight key of the profile fetch. The key
// carries the token so a new session never joins a fetch made for an old one.
const profileFlight = "current-user:"

// Manager drives the session lifecycle against the remote API.
//
// # Concurrency
//
// Concurrent [Manager.FetchUserInfo] calls made under the same token share
// one in-flight request. Sequential calls always reach the network.
type Manager struct {
	*State

	gateway Gateway
	flights singleflight.Group
}

// NewManager wraps a hydrated state with the remote operations.
func NewManager(state *State, gateway Gateway) *Manager {
	return &Manager{State: state, gateway: gateway}
}

// Login authenticates and loads the profile before returning.
//
// Inputs are not validated here. Gateway errors are returned unchanged and
// leave the session untouched. Once a token is received it is kept even if
// the profile fetch that follows fails; that error is then returned together
// with the login result.
func (manager *Manager) Login(ctx context.Context, credentials domain.Credentials) (*domain.LoginResult, error) {
	// ── 1. Authenticate ───────────────────────────────────────────────────
	result, err := manager.gateway.Login(ctx, credentials)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Token == "" {
		return nil, apperr.Server(constants.NoticeInvalidReply, http.StatusOK, constants.BusinessCodeOK)
	}

	// ── 2. Establish ──────────────────────────────────────────────────────
	if err := manager.establish(ctx, result.Token, result.UserID); err != nil {
		return result, err
	}
	manager.logger.InfoContext(ctx, "session_logged_in", slog.String("user_id", result.UserID.String()))

	// ── 3. Profile ────────────────────────────────────────────────────────
	if _, err := manager.FetchUserInfo(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// FetchUserInfo loads the current user's profile and caches it.
//
// The shared call is detached from any one caller's cancellation; each caller
// still stops waiting when its own ctx is done.
func (manager *Manager) FetchUserInfo(ctx context.Context) (*domain.UserInfo, error) {
	forToken := manager.Token()
	channel := manager.flights.DoChan(profileFlight+forToken, func() (any, error) {
		return manager.fetchProfile(context.WithoutCancel(ctx), forToken)
	})

	select {
	case <-ctx.Done():
		return nil, apperr.Network(constants.NoticeNetworkFailure, ctx.Err())
	case result := <-channel:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*domain.UserInfo).Clone(), nil
	}
}

func (manager *Manager) fetchProfile(ctx context.Context, forToken string) (*domain.UserInfo, error) {
	info, err := manager.gateway.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, apperr.Server(constants.NoticeInvalidReply, http.StatusOK, constants.BusinessCodeOK)
	}

	kept, err := manager.setUserInfo(ctx, forToken, info)
	if err != nil {
		return nil, err
	}
	if !kept {
		manager.logger.DebugContext(ctx, "session_profile_stale")
	}
	return info, nil
}
