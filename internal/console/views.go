// Copyright (c) 2026 RootLink. All rights reserved.

package console

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/RuzhenWong/rootlink/internal/notify"
	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
	"github.com/RuzhenWong/rootlink/internal/platform/respond"
	"github.com/RuzhenWong/rootlink/internal/router"
	"github.com/RuzhenWong/rootlink/internal/session"
	"github.com/RuzhenWong/rootlink/pkg/pagination"
)

// View is the JSON document rendered for a route.
type View struct {
	Title   string           `json:"title"`
	Name    string           `json:"name,omitempty"`
	View    string           `json:"view,omitempty"`
	Path    string           `json:"path"`
	Session session.Snapshot `json:"session"`
	Notices []notify.Notice  `json:"notices,omitempty"`
	Data    any              `json:"data,omitempty"`
}

// loader fetches the data a view shows.
type loader func(request *http.Request) (any, error)

type handler struct {
	deps Dependencies
}

// loaders maps view names to the remote data they display.
func (h *handler) loaders() map[string]loader {
	remote := h.deps.API
	return map[string]loader{
		"Dashboard": func(*http.Request) (any, error) {
			return h.deps.Session.UserInfo(), nil
		},
		"RealName": func(request *http.Request) (any, error) {
			return remote.User.RealNameStatus(request.Context())
		},
		"Profile": func(request *http.Request) (any, error) {
			return remote.User.Profile(request.Context())
		},
		"Relations": func(request *http.Request) (any, error) {
			return remote.Relation.MyRelations(request.Context())
		},
		"EulogyWall": func(request *http.Request) (any, error) {
			page := pagination.Parse(request.URL.Query())
			return remote.Eulogy.Wall(request.Context(), page.Upstream())
		},
		"ReviewEulogy": func(request *http.Request) (any, error) {
			return remote.Eulogy.MyPendingReviews(request.Context())
		},
		"Testament": func(request *http.Request) (any, error) {
			return remote.Testament.Mine(request.Context())
		},
		"FamilyTree": func(request *http.Request) (any, error) {
			return remote.Relation.Network(request.Context())
		},
	}
}

// guard runs the navigation guard before every view.
//
// A redirect decision becomes a 302 and an aborted one gets no response.
// Otherwise the location is recorded and the page title is exposed as a
// header and in the context.
func (h *handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		target := request.URL.RequestURI()
		decision := h.deps.Guard.Resolve(request.Context(), target)

		if decision.Aborted() {
			// Nobody is waiting; the timeout middleware answers a deadline.
			return
		}

		writer.Header().Set(constants.HeaderPageTitle, decision.Title)
		if !decision.Proceed() {
			http.Redirect(writer, request, decision.Location, http.StatusFound)
			return
		}

		h.deps.History.Push(target)
		ctx := ctxutil.WithPageTitle(request.Context(), decision.Title)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// renderView handles GET for every route in the table.
func (h *handler) renderView(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	route, _ := h.deps.Guard.Table().Lookup(request.URL.Path)

	view := View{
		Title: ctxutil.GetPageTitle(ctx),
		Name:  route.Name,
		View:  route.View,
		Path:  request.URL.RequestURI(),
	}

	if load, found := h.loaders()[route.Name]; found {
		data, err := load(request)
		if err != nil {
			h.fail(writer, request, err)
			return
		}
		view.Data = data
	}

	h.render(writer, view)
}

// notFound renders unknown locations. They are public, so no guard runs.
func (h *handler) notFound(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set(constants.HeaderPageTitle, router.PageTitle(""))
	respond.JSON(writer, http.StatusNotFound, respond.Envelope{
		Code:    http.StatusNotFound,
		Message: constants.NoticeNotFound,
		Data: View{
			Title:   router.PageTitle(""),
			Path:    request.URL.RequestURI(),
			Session: h.deps.Session.Snapshot(),
			Notices: h.deps.Flash.Drain(),
		},
	})
}

// render attaches the session and pending notices, then writes the view.
func (h *handler) render(writer http.ResponseWriter, view View) {
	view.Session = h.deps.Session.Snapshot()
	view.Notices = h.deps.Flash.Drain()
	respond.OK(writer, view)
}

// fail answers a failed remote call.
//
// An expired session has already been cleared by the pipeline, which also
// moved the history; the browser follows it. Other errors are rendered with
// the notices the pipeline raised.
func (h *handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if errors.Is(err, apperr.ErrAuthExpired) {
		location := h.deps.History.Current()
		if location == "" || location == request.URL.RequestURI() {
			location = constants.PathLogin
		}
		http.Redirect(writer, request, location, http.StatusSeeOther)
		return
	}

	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "console_action_failed",
		slog.String("error", apperr.Describe(err)),
	)

	appErr := apperr.As(err)
	if appErr == nil {
		respond.Error(writer, request, err)
		return
	}

	status := respond.StatusOf(appErr)
	respond.JSON(writer, status, respond.Envelope{
		Code:    status,
		Message: appErr.Error(),
		Data:    map[string]any{"notices": h.deps.Flash.Drain()},
		Details: appErr.Details,
	})
}
