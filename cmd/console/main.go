// Copyright (c) 2026 RootLink. All rights reserved.

// Command console is the entry point of the RootLink client console.
//
// # Startup Sequence
//
//  1. Parse flags.
//  2. Initialize structured logger.
//  3. Load configuration from the env file and environment variables.
//  4. Wire storage, session, request pipeline, router and views.
//  5. Start the HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring happens in package app.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/RuzhenWong/rootlink/internal/app"
	"github.com/RuzhenWong/rootlink/internal/platform/config"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

func main() {
	// ── 1. Flags ──────────────────────────────────────────────────────────
	addr := pflag.String("addr", "", "listen address, overrides CONSOLE_ADDR")
	envFile := pflag.String("env-file", ".env", "optional env file loaded before the environment")
	debug := pflag.Bool("debug", false, "enable debug logging, same as DEBUG=true")
	pflag.Parse()

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("[RootLink] console_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 3. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load(*envFile)
	must(log, err, "load configuration")

	if *addr != "" {
		cfg.ConsoleAddr = *addr
	}
	if cfg.Debug || *debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("addr", cfg.ConsoleAddr),
		slog.String("api", cfg.APIBaseURL),
		slog.String("storage", cfg.StorageDriver),
	)

	// Storage connections and session hydration must finish quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 4. Wiring ─────────────────────────────────────────────────────────
	application, err := app.Build(startupCtx, cfg, log, app.Options{})
	must(log, err, "wire console")

	// ── 5. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down console", slog.Duration("timeout", constants.ShutdownTimeout))
	shutdownErr := application.Server.Shutdown(constants.ShutdownTimeout)
	if shutdownErr != nil {
		log.Error("shutdown error", slog.Any("error", shutdownErr))
	}

	// Storage is released before any exit; os.Exit skips deferred calls.
	if err := application.Close(); err != nil {
		log.Error("close error", slog.Any("error", err))
	}
	if shutdownErr != nil {
		os.Exit(1)
	}

	log.Info("console stopped cleanly")
}

// newLogger builds the JSON logger and makes it the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String(constants.FieldApp, constants.LogApp))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
