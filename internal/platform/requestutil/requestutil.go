// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package requestutil provides utilities for extracting data from inbound HTTP
requests, for both the console actions and the mock API handlers.

It abstracts away the router's parameter extraction and body decoding, so that
every handler reports malformed input the same way.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
	"github.com/RuzhenWong/rootlink/internal/platform/sec"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned when a body cannot be decoded.
var ErrInvalidBody = apperr.ValidationError("Request body is malformed")

/*
DecodeJSON reads the request body and decodes it into target.

An empty body leaves target untouched. Unknown fields are ignored.

Returns:
  - error: [ErrInvalidBody] if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidBody.WithCause(err)
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredClaims returns the verified token claims of the request.

Returns:
  - *sec.AuthClaims: the caller's claims
  - error: [apperr.ErrAuthExpired] kind if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.AuthExpired("Unauthorized", http.StatusOK, http.StatusUnauthorized)
	}
	return claims, nil
}
