// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package api holds typed wrappers for each remote RootLink resource.

Every wrapper is a thin mapping from a Go method to one endpoint of the
remote API; all calls go through the request pipeline, so credentials,
classification and session expiry are handled there, not here.

Resources:

  - [AuthAPI]: SMS codes, registration, login and logout.
  - [UserAPI]: current user, profile, settings, avatar, real-name verification.
  - [RelationAPI]: kinship search, applications, inferred relations, network.
  - [EulogyAPI]: eulogy submission, review and the eulogy wall.
  - [TestamentAPI]: testament management.

Payloads the console never interprets are passed through as [json.RawMessage].
*/
package api

import (
	"context"
	"net/url"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/request"
	"github.com/RuzhenWong/rootlink/internal/session"
)

// Caller is the subset of the request pipeline the wrappers use.
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Upload(ctx context.Context, path string, form *request.Multipart, out any) error
}

// API groups the resource wrappers.
type API struct {
	Auth      *AuthAPI
	User      *UserAPI
	Relation  *RelationAPI
	Eulogy    *EulogyAPI
	Testament *TestamentAPI
}

// New builds every wrapper over caller.
func New(caller Caller) *API {
	return &API{
		Auth:      &AuthAPI{caller: caller},
		User:      &UserAPI{caller: caller},
		Relation:  &RelationAPI{caller: caller},
		Eulogy:    &EulogyAPI{caller: caller},
		Testament: &TestamentAPI{caller: caller},
	}
}

// Gateway exposes the login and current-user endpoints to the session manager.
func (api *API) Gateway() session.Gateway {
	return gateway{auth: api.Auth, user: api.User}
}

type gateway struct {
	auth *AuthAPI
	user *UserAPI
}

func (g gateway) Login(ctx context.Context, credentials domain.Credentials) (*domain.LoginResult, error) {
	return g.auth.Login(ctx, credentials)
}

func (g gateway) CurrentUser(ctx context.Context) (*domain.UserInfo, error) {
	return g.user.Current(ctx)
}
