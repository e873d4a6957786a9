// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package apperr defines the error taxonomy of the RootLink client.

Every failure that leaves the request pipeline is an [AppError] whose [Kind]
tells the caller what happened on the wire, independent of which endpoint was
called.

Architecture:

  - AppError: kind, client-visible message, transport status and business code.
  - Kinds: one per outcome class (auth expired, forbidden, not found, server, network, validation).
  - Matching: errors.Is against the exported sentinels compares kinds only.

Views never inspect HTTP statuses directly; they match on kinds.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an outcome of a remote call or a local input check.
type Kind string

const (
	// KindValidation is produced by local input checks, never by the pipeline.
	KindValidation Kind = "VALIDATION_ERROR"
	// KindAuthExpired covers business code 401 and transport status 401.
	KindAuthExpired Kind = "AUTH_EXPIRED"
	// KindForbidden is transport status 403.
	KindForbidden Kind = "FORBIDDEN"
	// KindNotFound is transport status 404.
	KindNotFound Kind = "NOT_FOUND"
	// KindServer covers 5xx statuses, rejected business codes and unreadable responses.
	KindServer Kind = "SERVER_ERROR"
	// KindNetwork means no response was received at all.
	KindNetwork Kind = "NETWORK_ERROR"
)

// AppError is the canonical error type returned by the client.
//
// # Fields
//
// Message is what the server (or the pipeline) said and is safe to show to
// the user. Cause is kept for logs and for errors.Unwrap.
type AppError struct {
	// Kind is the outcome class.
	Kind Kind `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"message"`
	// HTTPStatus is the transport status, zero when no response was received.
	HTTPStatus int `json:"-"`
	// BusinessCode is the envelope code, zero when no envelope was read.
	BusinessCode int `json:"-"`
	// Cause is the underlying error, if any.
	Cause error `json:"-"`
	// Details holds per-field validation errors for KindValidation.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the input name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an [*AppError] of the same kind.
//
// Only the kind is compared, so the sentinels below match any error of
// their class regardless of message or status.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// # Sentinels

var (
	ErrValidation  = &AppError{Kind: KindValidation}
	ErrAuthExpired = &AppError{Kind: KindAuthExpired}
	ErrForbidden   = &AppError{Kind: KindForbidden}
	ErrNotFound    = &AppError{Kind: KindNotFound}
	ErrServer      = &AppError{Kind: KindServer}
	ErrNetwork     = &AppError{Kind: KindNetwork}
)

// # Constructors

// AuthExpired creates an [AppError] for a rejected or expired credential.
func AuthExpired(msg string, httpStatus, businessCode int) *AppError {
	return &AppError{
		Kind:         KindAuthExpired,
		Message:      msg,
		HTTPStatus:   httpStatus,
		BusinessCode: businessCode,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg, HTTPStatus: http.StatusForbidden}
}

// NotFound creates a 404 [AppError].
func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

// Server creates a [KindServer] error.
//
// httpStatus is the transport status (200 when the envelope itself carried the
// failure), businessCode the envelope code or zero.
func Server(msg string, httpStatus, businessCode int) *AppError {
	return &AppError{
		Kind:         KindServer,
		Message:      msg,
		HTTPStatus:   httpStatus,
		BusinessCode: businessCode,
	}
}

// Network wraps a transport failure where no response was received.
func Network(msg string, cause error) *AppError {
	return &AppError{Kind: KindNetwork, Message: msg, Cause: cause}
}

// ValidationError creates a local validation failure with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Details: details}
}

// WithCause returns a copy of e carrying cause.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// KindOf returns the kind of err, or the empty kind for foreign errors.
func KindOf(err error) Kind {
	if ae := As(err); ae != nil {
		return ae.Kind
	}
	return ""
}

// Describe renders err for logs, including statuses when present.
func Describe(err error) string {
	ae := As(err)
	if ae == nil {
		return err.Error()
	}
	return fmt.Sprintf("%s (http=%d code=%d): %s", ae.Kind, ae.HTTPStatus, ae.BusinessCode, ae.Error())
}
