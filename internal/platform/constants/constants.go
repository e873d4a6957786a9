// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package constants provides centralized, immutable values for the RootLink client.

Categories:

  - Metadata: application name used in titles and logs.
  - Timing: request and server timeouts.
  - Storage: durable session keys.
  - Routing: well-known view paths and query parameters.
  - Notices: user-visible messages raised by the request pipeline.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "RootLink"
	AppVersion = "0.1.0-dev"

	// LogApp is the value of the "app" attribute on every log line.
	LogApp = "rootlink-console"
)

// # Timing

const (
	// DefaultAPITimeout bounds a single remote call; expiry is a network failure.
	DefaultAPITimeout = 15 * time.Second

	// DefaultReadTimeout is the maximum duration for reading a console request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout leaves room for one upstream call plus rendering.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long in-flight console requests get during shutdown.
	ShutdownTimeout = 10 * time.Second

	// GlobalRequestTimeout bounds a console request end to end.
	GlobalRequestTimeout = 60 * time.Second
)

// # Rate Limiting

const (
	// LoginRateLimitRPS is the sustained rate of login attempts per client IP.
	LoginRateLimitRPS = 0.2

	// LoginRateLimitBurst is how many login attempts a client may make at once.
	LoginRateLimitBurst = 5

	// RateLimitClientTTL is how long an idle client's bucket is kept.
	RateLimitClientTTL = 10 * time.Minute

	// RateLimitCleanupInterval is how often idle buckets are swept.
	RateLimitCleanupInterval = time.Minute
)

// # Durable Storage Keys

const (
	StorageKeyToken    = "rootlink_token"
	StorageKeyUserID   = "rootlink_user_id"
	StorageKeyUserInfo = "rootlink_user_info"

	// RedisPrefixSession namespaces session keys in a shared Redis.
	RedisPrefixSession = "rootlink:session:"
)

// # Routing

const (
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathRealName  = "/realname"

	// QueryRedirect carries the pending navigation intent through the login view.
	QueryRedirect = "redirect"

	// MaxRedirectHops bounds guard re-evaluation when redirects chain.
	MaxRedirectHops = 5
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
	HeaderPageTitle     = "X-Page-Title"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"

	ContentTypeJSON = "application/json"
	BearerPrefix    = "Bearer "
)

// # Envelope

const (
	// BusinessCodeOK marks a successful envelope.
	BusinessCodeOK = 200
	// BusinessCodeUnauthorized marks a rejected credential inside a 2xx envelope.
	BusinessCodeUnauthorized = 401
)

// # Notices

const (
	NoticeSessionExpired = "Your session has expired, please log in again"
	NoticeForbidden      = "You do not have access to this resource"
	NoticeNotFound       = "The requested resource does not exist"
	NoticeServerError    = "Server error, please try again later"
	NoticeNetworkFailure = "Network connection failed"
	NoticeRequestFailed  = "Request failed"
	NoticeInvalidReply   = "The server returned an unreadable response"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
)
