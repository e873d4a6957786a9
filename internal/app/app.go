// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package app is the composition root of the RootLink console.

It builds every component once, in dependency order:

	config → logger → backend → store → session state → history
	       → pipeline → API wrappers → session manager → guard → console

The request pipeline needs the session (for the token) and the router (to
move to the login view on expiry), while the session manager needs the API,
which needs the pipeline. The cycle is broken by building the session state
before the pipeline and handing the pipeline a [credentials] adapter instead
of the manager itself.
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/RuzhenWong/rootlink/internal/api"
	"github.com/RuzhenWong/rootlink/internal/console"
	"github.com/RuzhenWong/rootlink/internal/notify"
	"github.com/RuzhenWong/rootlink/internal/platform/config"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/metrics"
	"github.com/RuzhenWong/rootlink/internal/platform/middleware"
	redisstore "github.com/RuzhenWong/rootlink/internal/platform/redis"
	"github.com/RuzhenWong/rootlink/internal/request"
	"github.com/RuzhenWong/rootlink/internal/router"
	"github.com/RuzhenWong/rootlink/internal/session"
	"github.com/RuzhenWong/rootlink/internal/storage"
)

// probeTimeout bounds the readiness probe of the remote API.
const probeTimeout = 2 * time.Second

// App is a fully wired console.
type App struct {
	Server    *console.Server
	Session   *session.Manager
	API       *api.API
	History   *router.History
	Navigator *router.Navigator
	Flash     *notify.Flash
	Registry  *prometheus.Registry

	closers []func() error
}

// Options tweaks how [Build] wires the console. The zero value is production.
type Options struct {
	// HTTPClient overrides the pipeline transport.
	HTTPClient *http.Client
	// Backend overrides the configured storage driver.
	Backend storage.Backend
}

// Build wires the console from cfg.
//
// ctx bounds startup only: the Redis ping and session hydration. Background
// work started here stops when Close is called.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, options Options) (*App, error) {
	application := &App{}
	background, stop := context.WithCancel(context.Background())
	application.closers = append(application.closers, func() error { stop(); return nil })

	fail := func(err error) (*App, error) {
		_ = application.Close()
		return nil, err
	}

	// ── 1. Durable Storage ────────────────────────────────────────────────
	backend, checkStorage, err := application.openBackend(ctx, cfg, logger, options.Backend)
	if err != nil {
		return fail(err)
	}
	store := storage.NewSessionStore(backend)

	// ── 2. Session State ──────────────────────────────────────────────────
	state, err := session.Hydrate(ctx, store, logger)
	if err != nil {
		return fail(fmt.Errorf("app: hydrate session: %w", err))
	}

	history := router.NewHistory("")

	// ── 3. Request Pipeline ───────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics, err := metrics.NewPipeline(registry)
	if err != nil {
		return fail(fmt.Errorf("app: register metrics: %w", err))
	}

	flash := notify.NewFlash(notify.DefaultFlashCapacity)
	client, err := request.NewClient(request.Options{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.APITimeout,
		HTTPClient:  options.HTTPClient,
		Credentials: credentials{state: state, history: history, logger: logger},
		Notifier:    notify.Multi{flash, notify.NewLogNotifier(logger)},
		Metrics:     pipelineMetrics,
		Logger:      logger,
	})
	if err != nil {
		return fail(fmt.Errorf("app: build request client: %w", err))
	}

	// ── 4. API and Session Manager ────────────────────────────────────────
	remote := api.New(client)
	manager := session.NewManager(state, remote.Gateway())

	// ── 5. Navigation ─────────────────────────────────────────────────────
	guard := router.NewGuard(router.DefaultTable(), manager)
	navigator := router.NewNavigator(guard, history)

	// ── 6. Console ────────────────────────────────────────────────────────
	server := console.NewServer(cfg.ConsoleAddr, logger, console.Dependencies{
		Session:   manager,
		API:       remote,
		Guard:     guard,
		Navigator: navigator,
		History:   history,
		Flash:     flash,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Health: console.HealthDependencies{
			CheckStorage: checkStorage,
			CheckAPI:     apiProbe(cfg.Origin(), options.HTTPClient),
		},
		LoginLimiter: middleware.NewRateLimiter(background, constants.LoginRateLimitRPS, constants.LoginRateLimitBurst),
	})

	application.Server = server
	application.Session = manager
	application.API = remote
	application.History = history
	application.Navigator = navigator
	application.Flash = flash
	application.Registry = registry

	logger.Info("console_wired",
		slog.String("api", cfg.APIBaseURL),
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("restored_session", state.IsLoggedIn()),
	)
	return application, nil
}

// Close releases storage connections and stops background work.
func (application *App) Close() error {
	var errs []error
	for index := len(application.closers) - 1; index >= 0; index-- {
		if err := application.closers[index](); err != nil {
			errs = append(errs, err)
		}
	}
	application.closers = nil
	return errors.Join(errs...)
}

// openBackend selects the session backend from the configured driver.
func (application *App) openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, override storage.Backend) (storage.Backend, func() error, error) {
	if override != nil {
		return override, nil, nil
	}

	switch cfg.StorageDriver {
	case config.StorageRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("app: connect to redis: %w", err)
		}
		application.closers = append(application.closers, client.Close)
		return storage.NewRedisBackend(client, cfg.Origin()), redisCheck(client), nil

	case config.StorageFile:
		backend, err := storage.NewFileBackend(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("app: open session file: %w", err)
		}
		return backend, nil, nil

	default:
		return storage.NewMemoryBackend(), nil, nil
	}
}

func redisCheck(client *goredis.Client) func() error {
	return func() error {
		return redisstore.Ping(context.Background(), client)
	}
}

// apiProbe reports whether the API origin answers at all. Any HTTP status
// counts as reachable.
func apiProbe(origin string, base *http.Client) func() error {
	probe := &http.Client{Timeout: probeTimeout}
	if base != nil {
		probe.Transport = base.Transport
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		outgoing, err := http.NewRequestWithContext(ctx, http.MethodHead, origin, nil)
		if err != nil {
			return err
		}
		response, err := probe.Do(outgoing)
		if err != nil {
			return fmt.Errorf("api unreachable: %w", err)
		}
		return response.Body.Close()
	}
}

// # Credentials Adapter

// credentials gives the pipeline the token and the expiry reaction without
// exposing the session manager or the router to it.
type credentials struct {
	state   *session.State
	history *router.History
	logger  *slog.Logger
}

// Token implements [request.Credentials].
func (adapter credentials) Token() string { return adapter.state.Token() }

// OnAuthExpired clears the session and moves to the login view. Repeated
// calls leave the same final state.
func (adapter credentials) OnAuthExpired(ctx context.Context) {
	if err := adapter.state.Logout(ctx); err != nil {
		adapter.logger.WarnContext(ctx, "session_clear_failed", slog.Any("error", err))
	}
	adapter.history.Replace(constants.PathLogin)
}
