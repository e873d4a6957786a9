// Copyright (c) 2026 RootLink. All rights reserved.

package router

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
)

// Session is what the guard reads from, and does to, the user session.
type Session interface {
	IsLoggedIn() bool
	UserInfo() *domain.UserInfo
	FetchUserInfo(ctx context.Context) (*domain.UserInfo, error)
	Logout(ctx context.Context) error
}

// Action is the outcome of a guard evaluation.
type Action string

const (
	ActionProceed  Action = "proceed"
	ActionRedirect Action = "redirect"
	// ActionAbort drops the navigation because its caller went away. The
	// session is left as it was.
	ActionAbort Action = "abort"
)

// Decision is the result of [Guard.Resolve].
type Decision struct {
	Action Action `json:"action"`
	// Location is the redirect target; empty when proceeding.
	Location string `json:"location,omitempty"`
	// Title is the page title of the requested route.
	Title string `json:"title"`
	// Route is the matched descriptor; zero for unknown paths.
	Route Route `json:"route"`
}

// Proceed reports whether navigation may continue.
func (decision Decision) Proceed() bool { return decision.Action == ActionProceed }

// Aborted reports whether the navigation was dropped without a verdict.
func (decision Decision) Aborted() bool { return decision.Action == ActionAbort }

// Guard authorizes every navigation before its view renders.
type Guard struct {
	table   *Table
	session Session
}

// NewGuard creates a guard over table and session.
func NewGuard(table *Table, session Session) *Guard {
	return &Guard{table: table, session: session}
}

// Table returns the route table the guard resolves against.
func (guard *Guard) Table() *Table { return guard.table }

// Resolve evaluates a navigation to target (path plus optional query).
//
// # Steps
//
//  1. Unknown paths are public.
//  2. A static alias redirects to its target.
//  3. Public routes proceed.
//  4. Logged out: redirect to login, carrying target as the intent.
//  5. Logged in without a profile: fetch it once. On failure log out and
//     redirect to login without an intent. If ctx ended first, abort and
//     keep the session.
//  6. Otherwise proceed.
func (guard *Guard) Resolve(ctx context.Context, target string) Decision {
	path := target
	if parsed, err := url.Parse(target); err == nil {
		path = parsed.Path
	}

	// ── 1. Lookup ─────────────────────────────────────────────────────────
	route, found := guard.table.Lookup(path)
	decision := Decision{Action: ActionProceed, Title: PageTitle(route.Title), Route: route}
	if !found {
		return decision
	}

	// ── 2. Alias ──────────────────────────────────────────────────────────
	if route.Redirect != "" {
		return decision.redirect(route.Redirect)
	}

	// ── 3. Public ─────────────────────────────────────────────────────────
	if !route.RequiresAuth {
		return decision
	}

	// ── 4. Authentication ─────────────────────────────────────────────────
	if !guard.session.IsLoggedIn() {
		return decision.redirect(LoginLocation(target))
	}

	// ── 5. Profile ────────────────────────────────────────────────────────
	if guard.session.UserInfo() == nil {
		if _, err := guard.session.FetchUserInfo(ctx); err != nil {
			logger := ctxutil.GetLogger(ctx)
			if ctx.Err() != nil {
				logger.InfoContext(ctx, "guard_navigation_aborted",
					slog.String("target", target),
					slog.Any("cause", context.Cause(ctx)),
				)
				decision.Action = ActionAbort
				return decision
			}
			logger.WarnContext(ctx, "guard_profile_fetch_failed",
				slog.String("target", target),
				slog.Any("error", err),
			)
			if logoutErr := guard.session.Logout(ctx); logoutErr != nil {
				logger.ErrorContext(ctx, "guard_logout_failed", slog.Any("error", logoutErr))
			}
			return decision.redirect(constants.PathLogin)
		}
	}

	// ── 6. Allow ──────────────────────────────────────────────────────────
	return decision
}

func (decision Decision) redirect(location string) Decision {
	decision.Action = ActionRedirect
	decision.Location = location
	return decision
}

// LoginLocation builds the login path carrying intent as the redirect query.
func LoginLocation(intent string) string {
	if intent == "" {
		return constants.PathLogin
	}
	query := url.Values{constants.QueryRedirect: {intent}}
	return constants.PathLogin + "?" + query.Encode()
}

// IntendedPath returns where to go after a successful login.
//
// Only local absolute paths are honored; anything else, including the auth
// views themselves, falls back to the dashboard.
func IntendedPath(redirect string) string {
	if redirect == "" || redirect[0] != '/' || len(redirect) > 1 && (redirect[1] == '/' || redirect[1] == '\\') {
		return constants.PathDashboard
	}

	parsed, err := url.Parse(redirect)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return constants.PathDashboard
	}

	switch cleanPath(parsed.Path) {
	case constants.PathLogin, constants.PathRegister:
		return constants.PathDashboard
	}
	return parsed.RequestURI()
}
