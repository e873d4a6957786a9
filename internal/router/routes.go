// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package router decides where the user may go.

It holds the static route table, the navigation guard that runs before every
view, the navigation history (the current location), and the navigator that
ties them together.

Flow:

	Navigator.Push(target)
	  └─ Guard.Resolve(target) ─► Proceed  ─► History.Push(target)
	                            └► Redirect ─► Guard.Resolve(location) ...

The request pipeline never imports this package's guard. It only reaches
[History.Replace] through a callback built by the composition root.
*/
package router

import (
	"fmt"
	"strings"

	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

// Route describes one navigable location.
type Route struct {
	// Path is the exact location, e.g. "/eulogy/wall".
	Path string `json:"path"`
	// Name identifies the route independently of its path.
	Name string `json:"name,omitempty"`
	// View names the screen rendered for the route.
	View string `json:"view,omitempty"`
	// RequiresAuth marks protected routes.
	RequiresAuth bool `json:"requiresAuth"`
	// Title is the page title prefix, empty for the bare application name.
	Title string `json:"title,omitempty"`
	// Redirect makes the route a static alias of another location.
	Redirect string `json:"redirect,omitempty"`
}

// Table is an immutable set of routes keyed by path.
type Table struct {
	ordered []Route
	byPath  map[string]Route
}

// NewTable indexes routes, rejecting empty, relative or duplicate paths.
func NewTable(routes []Route) (*Table, error) {
	table := &Table{
		ordered: make([]Route, 0, len(routes)),
		byPath:  make(map[string]Route, len(routes)),
	}
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("router: route path %q must start with /", route.Path)
		}
		if _, exists := table.byPath[route.Path]; exists {
			return nil, fmt.Errorf("router: duplicate route %q", route.Path)
		}
		table.byPath[route.Path] = route
		table.ordered = append(table.ordered, route)
	}
	return table, nil
}

// Lookup finds the route registered for path. A trailing slash is ignored.
func (table *Table) Lookup(path string) (Route, bool) {
	route, found := table.byPath[cleanPath(path)]
	return route, found
}

// Routes returns the table in declaration order.
func (table *Table) Routes() []Route {
	return append([]Route(nil), table.ordered...)
}

// DefaultRoutes is the console's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: constants.PathLogin, Name: "Login", View: "auth/login", Title: "Login"},
		{Path: constants.PathRegister, Name: "Register", View: "auth/register", Title: "Register"},
		{Path: "/", Redirect: constants.PathDashboard},
		{Path: constants.PathDashboard, Name: "Dashboard", View: "dashboard", RequiresAuth: true, Title: "Home"},
		{Path: constants.PathRealName, Name: "RealName", View: "user/realname", RequiresAuth: true, Title: "Real-Name Verification"},
		{Path: "/profile", Name: "Profile", View: "user/profile", RequiresAuth: true, Title: "My Profile"},
		{Path: "/relations", Name: "Relations", View: "relation/relations", RequiresAuth: true, Title: "Relations"},
		{Path: "/eulogy/wall", Name: "EulogyWall", View: "eulogy/wall", RequiresAuth: true, Title: "Eulogy Wall"},
		{Path: "/eulogy/submit", Name: "SubmitEulogy", View: "eulogy/submit", RequiresAuth: true, Title: "Submit Eulogy"},
		{Path: "/eulogy/review", Name: "ReviewEulogy", View: "eulogy/review", RequiresAuth: true, Title: "Review Eulogy"},
		{Path: "/testament", Name: "Testament", View: "testament", RequiresAuth: true, Title: "Testament"},
		{Path: "/family-tree", Name: "FamilyTree", View: "relation/family-tree", RequiresAuth: true, Title: "Family Tree"},
	}
}

// DefaultTable indexes [DefaultRoutes].
func DefaultTable() *Table {
	table, err := NewTable(DefaultRoutes())
	if err != nil {
		panic(err)
	}
	return table
}

// PageTitle renders "<title> - RootLink", or "RootLink" when title is empty.
func PageTitle(title string) string {
	if title == "" {
		return constants.AppName
	}
	return title + " - " + constants.AppName
}

func cleanPath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
