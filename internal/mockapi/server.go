// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package mockapi is an in-process fake of the remote RootLink API.

It answers the authentication and user endpoints with the same
{code, message, data} envelope and HS256 bearer tokens the real server uses,
so the console can be developed and tested without a backend.

Architecture:

  - Accounts, SMS codes and revoked tokens live in memory.
  - Failures are reported inside HTTP 200 envelopes with business codes, the
    way the real server reports them. A missing, invalid, expired or revoked
    token yields envelope code 401.
  - Only the endpoints the console's core relies on are implemented.
*/
package mockapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/middleware"
	"github.com/RuzhenWong/rootlink/internal/platform/respond"
	"github.com/RuzhenWong/rootlink/internal/platform/sec"
)

// Business codes of the remote API.
const (
	CodeParamError      = 400
	CodeUnauthorized    = 401
	CodeNotFound        = 404
	CodeServerError     = 500
	CodeUserNotFound    = 40001
	CodePasswordError   = 40002
	CodePhoneExists     = 40003
	CodeVerificationBad = 40004
)

// issuer is the iss claim of every mock token.
const issuer = "rootlink-mock"

// Options configures a [Server].
type Options struct {
	// Secret signs tokens. Required.
	Secret string
	// TokenTTL is the lifetime of issued tokens. Zero means two hours.
	TokenTTL time.Duration
	// BcryptCost is the password hashing cost. Zero means bcrypt's default.
	BcryptCost int
	// Development allows cross-origin calls from any origin.
	Development bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the fake API.
type Server struct {
	tokens     *sec.TokenService
	directory  *directory
	tokenTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
	router     chi.Router
}

// New builds the fake API and its routes.
func New(options Options) (*Server, error) {
	tokens, err := sec.NewTokenService(options.Secret, issuer)
	if err != nil {
		return nil, fmt.Errorf("mockapi: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokenTTL := options.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 2 * time.Hour
	}

	server := &Server{
		tokens:     tokens,
		directory:  newDirectory(time.Now),
		tokenTTL:   tokenTTL,
		bcryptCost: options.BcryptCost,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.CORS(developmentFlag(options.Development)))
	r.Use(chimw.CleanPath)

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/sms/send", server.sendCode)
		api.Post("/auth/register", server.register)
		api.Post("/auth/login", server.login)

		api.Group(func(private chi.Router) {
			private.Use(middleware.Authenticate(revocableVerifier{tokens: tokens, directory: server.directory}))
			private.Use(middleware.RequireAuth)
			private.Post("/auth/logout", server.logout)
			private.Get("/user/current", server.currentUser)
			private.Get("/user/profile", server.profile)
			private.Post("/user/avatar", server.uploadAvatar)
			private.Post("/user/realname/submit", server.submitRealName)
			private.Get("/user/realname/status", server.realNameStatus)
			private.Get("/eulogy/wall", server.eulogyWall)
			private.Get("/eulogy/wall/{targetUserId}", server.eulogyWallByUser)
		})
	})

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Fail(writer, http.StatusNotFound, CodeNotFound, "Resource not found")
	})

	server.router = r
	return server, nil
}

// ServeHTTP makes the server mountable in httptest and http.Server alike.
func (server *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	server.router.ServeHTTP(writer, request)
}

// # Fixtures

// Seed registers an account directly, bypassing SMS codes.
func (server *Server) Seed(phone, password, realName string) error {
	hash, err := sec.HashPassword(password, server.bcryptCost)
	if err != nil {
		return err
	}
	if _, ok := server.directory.add(phone, hash, realName, uuid.NewString()); !ok {
		return errors.New("mockapi: phone already registered")
	}
	return nil
}

// LastCode returns the outstanding SMS code for phone, or "".
func (server *Server) LastCode(phone string) string {
	return server.directory.lastCode(phone)
}

// ExpireSessions revokes every token issued so far.
func (server *Server) ExpireSessions() {
	server.directory.revokeAll()
}

// revocableVerifier rejects tokens revoked by logout.
type revocableVerifier struct {
	tokens    *sec.TokenService
	directory *directory
}

func (verifier revocableVerifier) VerifyToken(tokenString string) (*sec.AuthClaims, error) {
	if verifier.directory.isRevoked(tokenString) {
		return nil, sec.ErrTokenExpired
	}
	return verifier.tokens.VerifyToken(tokenString)
}

type developmentFlag bool

func (flag developmentFlag) IsDevelopment() bool { return bool(flag) }

// bearerToken returns the raw token of an authenticated request.
func bearerToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	return strings.TrimPrefix(header, constants.BearerPrefix)
}
