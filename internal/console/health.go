// Copyright (c) 2026 RootLink. All rights reserved.

package console

import (
	"log/slog"
	"net/http"

	"github.com/RuzhenWong/rootlink/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for /ready.
type HealthDependencies struct {
	// CheckStorage pings the session backend (Redis when configured).
	CheckStorage func() error

	// CheckAPI probes the remote API.
	CheckAPI func() error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready handlers.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	checks := []struct {
		name  string
		check func() error
	}{
		{"storage", handler.dependencies.CheckStorage},
		{"api", handler.dependencies.CheckAPI},
	}

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}
		result := checkResult{Name: dependency.name, IsOK: true}
		if err := dependency.check(); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", dependency.name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	payload := map[string]any{"status": "ready", "checks": results}
	if !isSystemReady {
		payload["status"] = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, respond.Envelope{
			Code:    http.StatusServiceUnavailable,
			Message: "degraded",
			Data:    payload,
		})
		return
	}
	respond.OK(writer, payload)
}
