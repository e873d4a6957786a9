// Copyright (c) 2026 RootLink. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/RuzhenWong/rootlink/internal/domain"
)

// RelationAPI wraps /v1/relation.
type RelationAPI struct {
	caller Caller
}

// Search looks a user up by identity card number.
func (relation *RelationAPI) Search(ctx context.Context, idCard string) (json.RawMessage, error) {
	var found json.RawMessage
	err := relation.caller.Get(ctx, "/v1/relation/search", url.Values{"idCard": {idCard}}, &found)
	return found, err
}

// Apply asks another user to confirm a relation.
func (relation *RelationAPI) Apply(ctx context.Context, application any) error {
	return relation.caller.Post(ctx, "/v1/relation/apply", application, nil)
}

// PendingApplies lists applications awaiting the caller's answer.
func (relation *RelationAPI) PendingApplies(ctx context.Context) (json.RawMessage, error) {
	var applies json.RawMessage
	err := relation.caller.Get(ctx, "/v1/relation/pending-applies", nil, &applies)
	return applies, err
}

// HandleApply accepts or rejects an application.
func (relation *RelationAPI) HandleApply(ctx context.Context, applyID domain.ID, answer any) error {
	return relation.caller.Post(ctx, "/v1/relation/apply/"+pathSegment(applyID)+"/handle", answer, nil)
}

// MyRelations lists confirmed relations.
func (relation *RelationAPI) MyRelations(ctx context.Context) (json.RawMessage, error) {
	var relations json.RawMessage
	err := relation.caller.Get(ctx, "/v1/relation/my-relations", nil, &relations)
	return relations, err
}

// PendingInferred lists relations the server inferred and awaits confirmation for.
func (relation *RelationAPI) PendingInferred(ctx context.Context) (json.RawMessage, error) {
	var inferred json.RawMessage
	err := relation.caller.Get(ctx, "/v1/relation/inferred-pending", nil, &inferred)
	return inferred, err
}

// ConfirmInferred accepts an inferred relation.
func (relation *RelationAPI) ConfirmInferred(ctx context.Context, id domain.ID) error {
	return relation.caller.Post(ctx, "/v1/relation/inferred/"+pathSegment(id)+"/confirm", nil, nil)
}

// RejectInferred discards an inferred relation.
func (relation *RelationAPI) RejectInferred(ctx context.Context, id domain.ID) error {
	return relation.caller.Delete(ctx, "/v1/relation/inferred/"+pathSegment(id), nil)
}

// Remove deletes a confirmed relation.
func (relation *RelationAPI) Remove(ctx context.Context, relationID domain.ID) error {
	return relation.caller.Delete(ctx, "/v1/relation/"+pathSegment(relationID), nil)
}

// StartFullReInfer schedules a full re-inference job and returns its ID.
func (relation *RelationAPI) StartFullReInfer(ctx context.Context) (json.RawMessage, error) {
	var job json.RawMessage
	err := relation.caller.Post(ctx, "/v1/relation/reinfer/full", nil, &job)
	return job, err
}

// ReInferStatus reports the progress of a re-inference job.
func (relation *RelationAPI) ReInferStatus(ctx context.Context, jobID string) (json.RawMessage, error) {
	var status json.RawMessage
	err := relation.caller.Get(ctx, "/v1/relation/reinfer/status", url.Values{"jobId": {jobID}}, &status)
	return status, err
}

// Network returns every node and edge of the caller's family graph.
func (relation *RelationAPI) Network(ctx context.Context) (json.RawMessage, error) {
	var network json.RawMessage
	err := relation.caller.Get(ctx, "/v1/relation/network", nil, &network)
	return network, err
}

// pathSegment escapes an identifier for use inside a path.
func pathSegment(id domain.ID) string {
	return url.PathEscape(id.String())
}
