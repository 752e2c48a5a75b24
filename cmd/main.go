// Package main is the entry point for the realtime-svg server.
//
// Boot order: load and validate configuration, initialize logging,
// connect to the shared Redis store, bootstrap the fleet-shared
// credential material, then serve HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/realtime-svg/realtime-svg/internal/config"
	"github.com/realtime-svg/realtime-svg/internal/credentials"
	"github.com/realtime-svg/realtime-svg/internal/logger"
	"github.com/realtime-svg/realtime-svg/internal/server"
	"github.com/realtime-svg/realtime-svg/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	// Logging is not up until the configuration is: report early failures
	// straight to stderr.
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.LogLevel, cfg.PrettyLog)
	logger.Log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Bool("require_password", cfg.RequirePassword).
		Msg("Starting realtime-svg server")

	ctx := context.Background()
	redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to connect to store")
		os.Exit(1)
	}
	defer redisStore.Close()

	if err := credentials.Bootstrap(ctx, redisStore); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to bootstrap credential material")
		os.Exit(1)
	}

	app := server.NewApp(redisStore, cfg)
	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler: app.Router(),
	}

	go func() {
		logger.Log.Info().Str("addr", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error().Err(err).Msg("Server error")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn().Err(err).Msg("Graceful shutdown failed")
	}
}
