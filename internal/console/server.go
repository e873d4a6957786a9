// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package console serves the RootLink client as a local HTTP application.

It wires the chi router, the middleware chain, the navigation guard and the
session actions into a runnable [http.Server]. Every view is a JSON document;
redirects decided by the guard are real HTTP redirects.

Architecture:

  - GET routes come from the route table and run behind the guard.
  - POST routes are the session actions: login, logout, registration,
    real-name submission, avatar upload.
  - Remote calls go through the API wrappers and thus through the request pipeline.
*/
package console

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/RuzhenWong/rootlink/internal/api"
	"github.com/RuzhenWong/rootlink/internal/notify"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/middleware"
	"github.com/RuzhenWong/rootlink/internal/router"
	"github.com/RuzhenWong/rootlink/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Dependencies groups everything the console handlers use.
type Dependencies struct {
	// Session is the session manager (login, logout, snapshot).
	Session *session.Manager
	// API holds the remote resource wrappers.
	API *api.API
	// Guard authorizes every GET view.
	Guard *router.Guard
	// Navigator resolves the landing location after actions.
	Navigator *router.Navigator
	// History is the current location, also moved by session expiry.
	History *router.History
	// Flash is drained into every rendered view.
	Flash *notify.Flash
	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics http.Handler
	// Health lists the readiness checks.
	Health HealthDependencies
	// LoginLimiter throttles POST /login. Nil disables throttling.
	LoginLimiter *middleware.RateLimiter
}

// # Server Initialization

// NewServer constructs the router with the full middleware chain and
// registers the views and actions.
func NewServer(addr string, log *slog.Logger, deps Dependencies) *Server {
	handler := &handler{deps: deps}
	liveness, readiness := NewHealthHandlers(deps.Health, log)

	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", liveness)
	r.Get("/ready", readiness)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// # Views
	r.Group(func(views chi.Router) {
		views.Use(handler.guard)
		for _, route := range deps.Guard.Table().Routes() {
			views.Get(route.Path, handler.renderView)
		}
	})
	r.NotFound(handler.notFound)

	// # Actions
	r.Group(func(actions chi.Router) {
		if deps.LoginLimiter != nil {
			actions.With(deps.LoginLimiter.Handler).Post(constants.PathLogin, handler.login)
		} else {
			actions.Post(constants.PathLogin, handler.login)
		}
		actions.Post("/logout", handler.logout)
		actions.Post(constants.PathRegister, handler.register)
		actions.Post(constants.PathRegister+"/code", handler.sendCode)
		actions.Post(constants.PathRealName, handler.submitRealName)
		actions.Post("/profile/avatar", handler.uploadAvatar)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("console_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
