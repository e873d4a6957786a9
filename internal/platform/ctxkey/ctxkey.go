// Copyright (c) 2026 RootLink. All rights reserved.

// Package ctxkey defines typed context keys shared by the console and the request pipeline.
//
// # Safety
//
// Using a private, unexported type for keys prevents collisions with third-party
// packages that might also use context for storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeyPageTitle is the context key for the title resolved by the navigation guard.
	KeyPageTitle key = "page_title"

	// KeyUser is the context key for the verified token claims (mock API only).
	KeyUser key = "user"
)
