// Copyright (c) 2026 RootLink. All rights reserved.

package api

import (
	"context"

	"github.com/RuzhenWong/rootlink/internal/domain"
)

// SMS code purposes accepted by [AuthAPI.SendCode].
const (
	CodeTypeRegister = 1
	CodeTypeLogin    = 2
	CodeTypeReset    = 3
)

// SendCodeInput requests an SMS verification code.
type SendCodeInput struct {
	Phone string `json:"phone"`
	Type  int    `json:"type"`
}

// RegisterInput enrolls a new account.
type RegisterInput struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

// AuthAPI wraps /v1/auth.
type AuthAPI struct {
	caller Caller
}

// SendCode asks the server to text a verification code.
func (auth *AuthAPI) SendCode(ctx context.Context, input SendCodeInput) error {
	return auth.caller.Post(ctx, "/v1/auth/sms/send", input, nil)
}

// Register creates an account. The server does not log the user in.
func (auth *AuthAPI) Register(ctx context.Context, input RegisterInput) error {
	return auth.caller.Post(ctx, "/v1/auth/register", input, nil)
}

// Login exchanges credentials for a token.
func (auth *AuthAPI) Login(ctx context.Context, credentials domain.Credentials) (*domain.LoginResult, error) {
	var result domain.LoginResult
	if err := auth.caller.Post(ctx, "/v1/auth/login", credentials, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the token server-side.
func (auth *AuthAPI) Logout(ctx context.Context) error {
	return auth.caller.Post(ctx, "/v1/auth/logout", nil, nil)
}
