// Copyright (c) 2026 RootLink. All rights reserved.

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
	"github.com/RuzhenWong/rootlink/internal/platform/respond"
	"github.com/RuzhenWong/rootlink/internal/platform/sec"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the bearer token, if any.
//
// # Flow
//  1. No Authorization header: the request proceeds as anonymous.
//  2. Malformed header or rejected token: envelope code 401, HTTP 200.
//  3. Valid token: the claims are injected into the context.
//
// Failures are reported the way the RootLink API does, inside a 2xx envelope.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			tokenString, found := strings.CutPrefix(authHeader, constants.BearerPrefix)
			if !found || tokenString == "" {
				respond.Fail(writer, http.StatusOK, constants.BusinessCodeUnauthorized, "Invalid authorization format")
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				message := "Invalid token"
				if errors.Is(err, sec.ErrTokenExpired) {
					message = "Login expired, please log in again"
				}
				respond.Fail(writer, http.StatusOK, constants.BusinessCodeUnauthorized, message)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireAuth blocks anonymous requests with envelope code 401.
//
// Must be registered after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Fail(writer, http.StatusOK, constants.BusinessCodeUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(writer, request)
	})
}
