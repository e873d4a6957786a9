// Copyright (c) 2026 RootLink. All rights reserved.

// Package respond provides HTTP response helpers for the console and the mock API.
//
// # Architecture
//
// Every response, success or failure, is written as the RootLink envelope
// {code, message, data}. The console's own views use the same shape the remote
// API does, so a single decoder reads both.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
)

// MessageOK is the message of every successful envelope.
const MessageOK = "success"

// Envelope is the JSON body of every response.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	// Details carries per-field validation failures.
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set(constants.HeaderContentType, "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 response with data in a success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, Envelope{Code: constants.BusinessCodeOK, Message: MessageOK, Data: data})
}

// Fail writes a failure envelope.
//
// The remote API reports most failures with HTTP 200 and a business code;
// statusCode lets callers reproduce either style.
func Fail(writer http.ResponseWriter, statusCode, businessCode int, message string) {
	JSON(writer, statusCode, Envelope{Code: businessCode, Message: message})
}

// Error converts any Go error into a failure envelope.
//
// Foreign errors are logged and hidden behind a generic 500.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		JSON(writer, http.StatusInternalServerError, Envelope{Code: http.StatusInternalServerError, Message: constants.NoticeServerError})
		return
	}

	status := StatusOf(appError)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "server_error",
			slog.String("kind", string(appError.Kind)),
			slog.Any("cause", appError.Cause),
		)
	}

	code := appError.BusinessCode
	if code == 0 {
		code = status
	}

	JSON(writer, status, Envelope{Code: code, Message: appError.Error(), Details: appError.Details})
}

// StatusOf picks the HTTP status a console response uses for err.
func StatusOf(err *apperr.AppError) int {
	switch err.Kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthExpired:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindNetwork:
		return http.StatusBadGateway
	}
	if err.HTTPStatus >= http.StatusInternalServerError {
		return http.StatusBadGateway
	}
	if err.HTTPStatus >= http.StatusBadRequest {
		return err.HTTPStatus
	}
	return http.StatusUnprocessableEntity
}
