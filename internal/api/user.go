// Copyright (c) 2026 RootLink. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"io"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/request"
)

// RealNameInput submits identity documents for verification.
type RealNameInput struct {
	RealName string `json:"realName"`
	IDCard   string `json:"idCard"`
}

// UserAPI wraps /v1/user.
type UserAPI struct {
	caller Caller
}

// Current returns the profile of the token holder.
func (user *UserAPI) Current(ctx context.Context) (*domain.UserInfo, error) {
	var info domain.UserInfo
	if err := user.caller.Get(ctx, "/v1/user/current", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Profile returns the full profile document.
func (user *UserAPI) Profile(ctx context.Context) (json.RawMessage, error) {
	var profile json.RawMessage
	err := user.caller.Get(ctx, "/v1/user/profile", nil, &profile)
	return profile, err
}

// UpdateSettings patches privacy settings such as allowSearch.
func (user *UserAPI) UpdateSettings(ctx context.Context, settings any) error {
	return user.caller.Patch(ctx, "/v1/user/settings", settings, nil)
}

// UpdateProfile replaces the editable profile fields.
func (user *UserAPI) UpdateProfile(ctx context.Context, profile any) error {
	return user.caller.Put(ctx, "/v1/user/profile", profile, nil)
}

// RelativeProfile returns what the privacy rules allow of a relative's profile.
func (user *UserAPI) RelativeProfile(ctx context.Context, relativeUserID domain.ID) (json.RawMessage, error) {
	var profile json.RawMessage
	err := user.caller.Get(ctx, "/v1/user/relative/"+pathSegment(relativeUserID), nil, &profile)
	return profile, err
}

// UploadAvatar sends an image as the "file" part and returns its URL.
func (user *UserAPI) UploadAvatar(ctx context.Context, filename string, content io.Reader) (string, error) {
	form := request.NewMultipart().AddFile("file", filename, content)

	var location string
	if err := user.caller.Upload(ctx, "/v1/user/avatar", form, &location); err != nil {
		return "", err
	}
	return location, nil
}

// SubmitRealName starts identity verification.
func (user *UserAPI) SubmitRealName(ctx context.Context, input RealNameInput) error {
	return user.caller.Post(ctx, "/v1/user/realname/submit", input, nil)
}

// RealNameStatus returns the verification state.
func (user *UserAPI) RealNameStatus(ctx context.Context) (json.RawMessage, error) {
	var status json.RawMessage
	err := user.caller.Get(ctx, "/v1/user/realname/status", nil, &status)
	return status, err
}

// MyIDCard returns the caller's own identity card number.
func (user *UserAPI) MyIDCard(ctx context.Context) (string, error) {
	var idCard string
	err := user.caller.Get(ctx, "/v1/user/realname/idcard", nil, &idCard)
	return idCard, err
}

// Deactivate closes the account.
func (user *UserAPI) Deactivate(ctx context.Context) error {
	return user.caller.Delete(ctx, "/v1/user/deactivate", nil)
}
