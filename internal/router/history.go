// Copyright (c) 2026 RootLink. All rights reserved.

package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

// ErrRedirectLoop is returned when redirects keep chaining.
var ErrRedirectLoop = errors.New("router: too many redirects")

// ErrNavigationAborted is returned when the guard dropped a navigation
// because its context ended.
var ErrNavigationAborted = errors.New("router: navigation aborted")

// History tracks the current location of the console.
//
// It depends on nothing so that the request pipeline's expiry hook can force a
// location without importing the guard.
type History struct {
	mu      sync.Mutex
	current string
	visits  int
}

// NewHistory starts at initial.
func NewHistory(initial string) *History {
	return &History{current: initial}
}

// Current returns the current location.
func (history *History) Current() string {
	history.mu.Lock()
	defer history.mu.Unlock()
	return history.current
}

// Push records a new location.
func (history *History) Push(location string) {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.current = location
	history.visits++
}

// Replace overwrites the current location without adding a visit.
// Replacing with the current location is a no-op.
func (history *History) Replace(location string) {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.current = location
}

// Visits counts pushed locations.
func (history *History) Visits() int {
	history.mu.Lock()
	defer history.mu.Unlock()
	return history.visits
}

// Navigator applies the guard to every navigation and follows redirects.
type Navigator struct {
	guard   *Guard
	history *History
}

// NewNavigator links a guard to a history.
func NewNavigator(guard *Guard, history *History) *Navigator {
	return &Navigator{guard: guard, history: history}
}

// Push navigates to target. Redirects re-run the guard on the new location,
// at most [constants.MaxRedirectHops] times.
//
// The returned decision is the one for the final location, which is also
// recorded in the history.
func (navigator *Navigator) Push(ctx context.Context, target string) (Decision, error) {
	location := target
	for hop := 0; hop <= constants.MaxRedirectHops; hop++ {
		decision := navigator.guard.Resolve(ctx, location)
		if decision.Proceed() {
			navigator.history.Push(location)
			return decision, nil
		}
		if decision.Aborted() {
			return decision, fmt.Errorf("%w: %s: %w", ErrNavigationAborted, location, ctx.Err())
		}
		location = decision.Location
	}
	return Decision{}, fmt.Errorf("%w: %s", ErrRedirectLoop, target)
}

// Current returns the location of the last completed navigation.
func (navigator *Navigator) Current() string {
	return navigator.history.Current()
}
