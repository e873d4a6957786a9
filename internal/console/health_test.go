// Copyright (c) 2026 RootLink. All rights reserved.

package console_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RuzhenWong/rootlink/internal/console"
)

func TestReadiness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		deps       console.HealthDependencies
		wantStatus int
		wantBody   string
	}{
		{"no checks", console.HealthDependencies{}, http.StatusOK, `"status":"ready"`},
		{
			"all healthy",
			console.HealthDependencies{CheckStorage: func() error { return nil }, CheckAPI: func() error { return nil }},
			http.StatusOK, `"status":"ready"`,
		},
		{
			"api down",
			console.HealthDependencies{CheckStorage: func() error { return nil }, CheckAPI: func() error { return errors.New("refused") }},
			http.StatusServiceUnavailable, `"error":"refused"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			liveness, readiness := console.NewHealthHandlers(tt.deps, logger)

			recorder := httptest.NewRecorder()
			liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)

			recorder = httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}
