// Copyright (c) 2026 RootLink. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/RuzhenWong/rootlink/internal/domain"
)

// EulogyAPI wraps /v1/eulogy.
type EulogyAPI struct {
	caller Caller
}

// Submit posts a eulogy for review.
func (eulogy *EulogyAPI) Submit(ctx context.Context, draft any) error {
	return eulogy.caller.Post(ctx, "/v1/eulogy/submit", draft, nil)
}

// Review records the caller's verdict on a eulogy.
func (eulogy *EulogyAPI) Review(ctx context.Context, eulogyID domain.ID, verdict any) error {
	return eulogy.caller.Post(ctx, "/v1/eulogy/"+pathSegment(eulogyID)+"/review", verdict, nil)
}

// MyPendingReviews lists eulogies waiting for the caller's review.
func (eulogy *EulogyAPI) MyPendingReviews(ctx context.Context) (json.RawMessage, error) {
	var pending json.RawMessage
	err := eulogy.caller.Get(ctx, "/v1/eulogy/my-pending-reviews", nil, &pending)
	return pending, err
}

// Wall pages through all published eulogies.
func (eulogy *EulogyAPI) Wall(ctx context.Context, query url.Values) (json.RawMessage, error) {
	var page json.RawMessage
	err := eulogy.caller.Get(ctx, "/v1/eulogy/wall", query, &page)
	return page, err
}

// WallByUser pages through the eulogies of one deceased user.
func (eulogy *EulogyAPI) WallByUser(ctx context.Context, targetUserID domain.ID, query url.Values) (json.RawMessage, error) {
	var page json.RawMessage
	err := eulogy.caller.Get(ctx, "/v1/eulogy/wall/"+pathSegment(targetUserID), query, &page)
	return page, err
}

// Detail returns one eulogy.
func (eulogy *EulogyAPI) Detail(ctx context.Context, eulogyID domain.ID) (json.RawMessage, error) {
	var detail json.RawMessage
	err := eulogy.caller.Get(ctx, "/v1/eulogy/"+pathSegment(eulogyID), nil, &detail)
	return detail, err
}
