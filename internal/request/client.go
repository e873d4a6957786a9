// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package request is the single egress point for RootLink API traffic.

Every remote call passes through [Client.Do], which runs two stages:

  - Outbound: attaches the bearer token, a correlation ID, and the content
    type (JSON unless the payload is a [Multipart] upload).
  - Inbound: unwraps the {code, message, data} envelope and classifies every
    outcome into an [apperr.AppError] kind.

Every failure raises a user-visible notice and fails the call. An expired
session additionally triggers [Credentials.OnAuthExpired], which is the only
global side effect the pipeline has. Nothing is retried.
*/
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RuzhenWong/rootlink/internal/notify"
	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
	"github.com/RuzhenWong/rootlink/internal/platform/metrics"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Credentials is the narrow view of the session the pipeline needs.
//
// The pipeline never imports the session manager or the router; whoever
// builds the client decides what "expired" does.
type Credentials interface {
	// Token returns the current bearer token, or "" when logged out.
	Token() string

	// OnAuthExpired is called after the server rejected the credential.
	// It must be idempotent: concurrent calls may all report expiry.
	OnAuthExpired(ctx context.Context)
}

// Options configures a [Client].
type Options struct {
	// BaseURL is the API prefix every path is appended to (e.g. "http://host/api").
	BaseURL string
	// Timeout bounds each call. Zero means [constants.DefaultAPITimeout].
	Timeout time.Duration
	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout.
	HTTPClient *http.Client
	// Credentials supplies the token and the expiry hook. May be nil.
	Credentials Credentials
	// Notifier receives user-visible notices. May be nil.
	Notifier notify.Notifier
	// Metrics records outcomes. May be nil.
	Metrics *metrics.Pipeline
	// Logger is used when the context carries none. Nil means slog.Default().
	Logger *slog.Logger
}

// Client sends calls to the RootLink API.
//
// # Concurrency
//
// Client is safe for concurrent use; calls are independent and unbounded.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials Credentials
	notifier    notify.Notifier
	metrics     *metrics.Pipeline
	logger      *slog.Logger
}

// NewClient validates options and builds a [Client].
func NewClient(options Options) (*Client, error) {
	if options.BaseURL == "" {
		return nil, fmt.Errorf("request: BaseURL is required")
	}
	if _, err := url.ParseRequestURI(options.BaseURL); err != nil {
		return nil, fmt.Errorf("request: invalid BaseURL %q: %w", options.BaseURL, err)
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAPITimeout
	}

	httpClient := &http.Client{}
	if options.HTTPClient != nil {
		clone := *options.HTTPClient
		httpClient = &clone
	}
	httpClient.Timeout = timeout

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(options.BaseURL, "/"),
		httpClient:  httpClient,
		credentials: options.Credentials,
		notifier:    options.Notifier,
		metrics:     options.Metrics,
		logger:      logger,
	}, nil
}

// Call describes one remote call.
type Call struct {
	Method string
	// Path is appended to the base URL and must start with "/".
	Path  string
	Query url.Values
	// Body is JSON-encoded, unless it is a *Multipart. Nil sends no body.
	Body any
	// Header holds caller overrides, including Content-Type.
	Header http.Header
}

// # Convenience Verbs

// Get issues a GET with optional query parameters.
func (client *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return client.Do(ctx, Call{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body.
func (client *Client) Post(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body.
func (client *Client) Put(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch issues a PATCH with a JSON body.
func (client *Client) Patch(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE without a body.
func (client *Client) Delete(ctx context.Context, path string, out any) error {
	return client.Do(ctx, Call{Method: http.MethodDelete, Path: path}, out)
}

// Upload issues a multipart POST.
func (client *Client) Upload(ctx context.Context, path string, form *Multipart, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPost, Path: path, Body: form}, out)
}

// # Pipeline

// Do runs call through both pipeline stages and decodes the envelope data
// into out (skipped when out is nil or the data is null).
//
// Every error returned is an [*apperr.AppError], except for failures to
// build the request, which are programming errors and are returned as-is.
func (client *Client) Do(ctx context.Context, call Call, out any) error {
	startTime := time.Now()

	// ── 1. Outbound ───────────────────────────────────────────────────────
	httpRequest, err := client.outbound(ctx, call)
	if err != nil {
		return err
	}

	requestID := httpRequest.Header.Get(constants.HeaderXRequestID)
	logger := ctxutil.GetLogger(ctx)
	if logger == slog.Default() {
		logger = client.logger
	}
	logger = logger.With(
		slog.String("upstream_method", call.Method),
		slog.String("upstream_path", call.Path),
		slog.String("upstream_request_id", requestID),
	)

	// ── 2. Exchange ───────────────────────────────────────────────────────
	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		appErr := apperr.Network(constants.NoticeNetworkFailure, err)
		client.finish(ctx, logger, call.Method, startTime, verdict{err: appErr, notice: constants.NoticeNetworkFailure})
		return appErr
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		appErr := apperr.Network(constants.NoticeNetworkFailure, err)
		client.finish(ctx, logger, call.Method, startTime, verdict{err: appErr, notice: constants.NoticeNetworkFailure})
		return appErr
	}

	// ── 3. Inbound ────────────────────────────────────────────────────────
	result, envelope := client.inbound(response.StatusCode, body)
	if result.err == nil && out != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			result = verdict{
				err:    apperr.Server(constants.NoticeInvalidReply, response.StatusCode, envelope.Code).WithCause(err),
				notice: constants.NoticeInvalidReply,
			}
		}
	}

	client.finish(ctx, logger, call.Method, startTime, result)
	if result.err != nil {
		return result.err
	}
	return nil
}

// outbound builds the HTTP request: URL, body, credential and content type.
func (client *Client) outbound(ctx context.Context, call Call) (*http.Request, error) {
	requestURL := client.baseURL + call.Path
	if len(call.Query) > 0 {
		requestURL += "?" + call.Query.Encode()
	}

	var (
		bodyReader    io.Reader
		multipartType string
	)
	switch payload := call.Body.(type) {
	case nil:
	case *Multipart:
		buffer, contentType, err := payload.encode()
		if err != nil {
			return nil, err
		}
		bodyReader, multipartType = buffer, contentType
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("request: failed to encode body for %s %s: %w", call.Method, call.Path, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, call.Method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("request: failed to create %s %s: %w", call.Method, call.Path, err)
	}
	for name, values := range call.Header {
		for _, value := range values {
			httpRequest.Header.Add(name, value)
		}
	}

	// Credential
	if client.credentials != nil {
		if token := client.credentials.Token(); token != "" {
			httpRequest.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
		}
	}

	// Content type: uploads carry their own boundary, everything else is JSON
	// unless the caller said otherwise.
	if multipartType != "" {
		httpRequest.Header.Set(constants.HeaderContentType, multipartType)
	} else if httpRequest.Header.Get(constants.HeaderContentType) == "" {
		httpRequest.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	// Correlation
	requestID := ctxutil.GetRequestID(ctx)
	if requestID == "" {
		requestID = newRequestID()
	}
	httpRequest.Header.Set(constants.HeaderXRequestID, requestID)

	return httpRequest, nil
}

// inbound classifies a received response.
func (client *Client) inbound(status int, body []byte) (verdict, *Envelope) {
	envelope, decodeErr := decodeEnvelope(body)

	if status >= 200 && status < 300 {
		if decodeErr != nil {
			return verdict{
				err:    apperr.Server(constants.NoticeInvalidReply, status, 0).WithCause(decodeErr),
				notice: constants.NoticeInvalidReply,
			}, nil
		}
		return classifyEnvelope(envelope), envelope
	}

	if decodeErr != nil {
		envelope = nil
	}
	return classifyStatus(status, envelope), envelope
}

// finish applies the side effects of a verdict: notice, expiry, metrics, log.
func (client *Client) finish(ctx context.Context, logger *slog.Logger, method string, startTime time.Time, result verdict) {
	elapsed := time.Since(startTime)
	client.metrics.Observe(method, outcomeLabel(result.err), elapsed)

	if result.err == nil {
		logger.DebugContext(ctx, "upstream_call_finished", slog.Int64("latency_ms", elapsed.Milliseconds()))
		return
	}

	logger.WarnContext(ctx, "upstream_call_failed",
		slog.String("kind", string(result.err.Kind)),
		slog.Int("http_status", result.err.HTTPStatus),
		slog.Int("business_code", result.err.BusinessCode),
		slog.String("message", result.err.Message),
		slog.Int64("latency_ms", elapsed.Milliseconds()),
		slog.Any("cause", result.err.Cause),
	)

	if client.notifier != nil && result.notice != "" {
		notify.Error(ctx, client.notifier, result.notice)
	}
	if result.expire && client.credentials != nil {
		// Recovery must complete even if the caller gave up on the call.
		client.credentials.OnAuthExpired(context.WithoutCancel(ctx))
	}
}

// newRequestID returns a time-sortable UUID v7, falling back to v4.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
