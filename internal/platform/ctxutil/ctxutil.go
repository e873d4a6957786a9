// Copyright (c) 2026 RootLink. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/RuzhenWong/rootlink/internal/platform/ctxkey"
	"github.com/RuzhenWong/rootlink/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
//
// The request pipeline forwards it to the remote API so one console request
// and the upstream calls it triggers share a correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Navigation

// WithPageTitle returns a new context carrying the title of the view being rendered.
func WithPageTitle(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPageTitle, title)
}

// GetPageTitle retrieves the page title, or an empty string if none was resolved.
func GetPageTitle(ctx context.Context) string {
	title, _ := ctx.Value(ctxkey.KeyPageTitle).(string)
	return title
}

// # Authentication

// WithAuthUser attaches verified token claims to ctx.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, claims)
}

// GetAuthUser returns the verified claims, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}
