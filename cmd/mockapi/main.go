// Copyright (c) 2026 RootLink. All rights reserved.

// Command mockapi serves an in-memory fake of the RootLink API for local
// development of the console.
//
// A demo account is seeded at startup; SMS codes are written to the log
// instead of being sent.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/RuzhenWong/rootlink/internal/mockapi"
	"github.com/RuzhenWong/rootlink/internal/platform/config"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

func main() {
	envFile := pflag.String("env-file", ".env", "optional env file loaded before the environment")
	addr := pflag.String("addr", "", "listen address, overrides MOCK_ADDR")
	demoPhone := pflag.String("demo-phone", "13800138000", "phone of the seeded demo account")
	demoPassword := pflag.String("demo-password", "Abc123", "password of the seeded demo account")
	pflag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String(constants.FieldApp, "rootlink-mockapi"))
	slog.SetDefault(log)

	cfg, err := config.Load(*envFile)
	must(log, err, "load configuration")
	if *addr != "" {
		cfg.MockAddr = *addr
	}

	mock, err := mockapi.New(mockapi.Options{
		Secret:      cfg.MockJWTSecret,
		TokenTTL:    cfg.MockTokenTTL,
		Development: cfg.IsDevelopment(),
		Logger:      log,
	})
	must(log, err, "build mock api")
	must(log, mock.Seed(*demoPhone, *demoPassword, "Demo"), "seed demo account")

	server := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           mock,
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Info("mockapi_starting", slog.String("addr", cfg.MockAddr), slog.String("demo_phone", *demoPhone))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			must(log, err, "serve")
		}
	}()

	sig := <-quit
	log.Info("shutdown signal received", slog.String("signal", sig.String()))
	_ = server.Close()
}

func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure", slog.String("context", context), slog.Any("error", err))
		os.Exit(1)
	}
}
