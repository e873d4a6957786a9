// Copyright (c) 2026 RootLink. All rights reserved.

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/respond"
)

func TestOK(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"code":200,"message":"success","data":{"status":"ok"}}`, recorder.Body.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"validation", apperr.ValidationError("bad", apperr.FieldError{Field: "phone", Message: "required"}), http.StatusBadRequest, http.StatusBadRequest},
		{"auth expired keeps business code", apperr.AuthExpired("expired", http.StatusOK, 401), http.StatusUnauthorized, 401},
		{"business failure", apperr.Server("wrong password", http.StatusOK, 40002), http.StatusUnprocessableEntity, 40002},
		{"upstream 5xx", apperr.Server("down", http.StatusServiceUnavailable, 0), http.StatusBadGateway, http.StatusBadGateway},
		{"upstream 429", apperr.Server("slow down", http.StatusTooManyRequests, 0), http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"network", apperr.Network(constants.NoticeNetworkFailure, errors.New("dial")), http.StatusBadGateway, http.StatusBadGateway},
		{"wrapped", errors.Join(apperr.ErrNotFound), http.StatusNotFound, http.StatusNotFound},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			var envelope respond.Envelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope.Code)
			assert.NotEmpty(t, envelope.Message)
		})
	}
}

func TestError_ForeignErrorIsHidden(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: secret detail"))

	assert.NotContains(t, recorder.Body.String(), "secret detail")
	assert.Contains(t, recorder.Body.String(), constants.NoticeServerError)
}
