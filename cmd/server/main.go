package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/mdattr/internal/api"
	"github.com/dgallion1/mdattr/internal/config"
	mdlog "github.com/dgallion1/mdattr/internal/log"
	"github.com/dgallion1/mdattr/internal/pipeline"
	"github.com/dgallion1/mdattr/internal/stats"
)

func main() {
	cfg := config.Load()

	handler, err := mdlog.NewHandlerFromStrings(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	log := slog.New(handler)
	if err != nil {
		log.Warn("invalid log settings, using defaults", "error", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the attribute policy.
	pol, policyHash, err := config.LoadPolicyWithHash(cfg.PolicyFile)
	if err != nil {
		log.Error("invalid policy", "path", cfg.PolicyFile, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	renderStats := stats.NewRenderStats(cfg.StatsWindow)
	pipe := pipeline.New(pol.Transformer(), policyHash, renderStats, log, cfg.MaxConcurrentRender)

	// Initialize HTTP server.
	srv := api.NewServer(pipe, renderStats, log, cfg)

	if cfg.WatchPolicy && cfg.PolicyFile != "" {
		reloader, err := api.NewReloader(srv, log, cfg.PolicyFile)
		if err != nil {
			log.Warn("policy hot-reload disabled", "error", err)
		} else {
			go reloader.Run(ctx)
		}
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting mdattr",
		"port", cfg.Port,
		"scope", pol.Scope,
		"policy_hash", policyHash,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
