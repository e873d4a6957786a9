// Copyright (c) 2026 RootLink. All rights reserved.

package api

import (
	"context"
	"encoding/json"

	"github.com/RuzhenWong/rootlink/internal/domain"
)

// TestamentAPI wraps /v1/testament.
type TestamentAPI struct {
	caller Caller
}

// Create stores a new testament and returns it as created.
func (testament *TestamentAPI) Create(ctx context.Context, draft any) (json.RawMessage, error) {
	var created json.RawMessage
	err := testament.caller.Post(ctx, "/v1/testament", draft, &created)
	return created, err
}

// Update replaces a testament.
func (testament *TestamentAPI) Update(ctx context.Context, id domain.ID, draft any) error {
	return testament.caller.Put(ctx, "/v1/testament/"+pathSegment(id), draft, nil)
}

// Delete removes a testament.
func (testament *TestamentAPI) Delete(ctx context.Context, id domain.ID) error {
	return testament.caller.Delete(ctx, "/v1/testament/"+pathSegment(id), nil)
}

// Mine lists the caller's testaments.
func (testament *TestamentAPI) Mine(ctx context.Context) (json.RawMessage, error) {
	var list json.RawMessage
	err := testament.caller.Get(ctx, "/v1/testament/my", nil, &list)
	return list, err
}

// Detail returns one testament.
func (testament *TestamentAPI) Detail(ctx context.Context, id domain.ID) (json.RawMessage, error) {
	var detail json.RawMessage
	err := testament.caller.Get(ctx, "/v1/testament/"+pathSegment(id), nil, &detail)
	return detail, err
}
