package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/notescribe/internal/api"
	"github.com/dgallion1/notescribe/internal/cache"
	"github.com/dgallion1/notescribe/internal/chunker"
	"github.com/dgallion1/notescribe/internal/config"
	"github.com/dgallion1/notescribe/internal/examples"
	"github.com/dgallion1/notescribe/internal/inference"
	"github.com/dgallion1/notescribe/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prediction cache: Redis when configured, otherwise in-process.
	var store cache.Store
	if cfg.RedisURL != "" {
		r, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		store = r
	} else {
		store = cache.NewMemory(cfg.CacheSize, cfg.CacheTTL)
	}

	client := inference.NewClient(cfg.NERURL, cfg.NERTimeout)
	predictor := inference.NewCached(client, store, log)

	var counter chunker.Counter
	if cfg.TokenizerPath != "" {
		wp, err := chunker.LoadTokenizer(cfg.TokenizerPath)
		if err != nil {
			log.Warn("tokenizer unavailable, estimating token counts", "error", err)
		} else {
			counter = wp
		}
	}

	orch := pipeline.NewOrchestrator(cfg, predictor, counter, log)
	orch.Start(ctx)

	srv := api.NewServer(api.Services{
		Predictor:    predictor,
		Health:       client,
		Stats:        client.Stats,
		Examples:     examples.NewStore(cfg.ExamplesPath),
		Orchestrator: orch,
	}, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
		if err := store.Close(); err != nil {
			log.Warn("cache close failed", "error", err)
		}
	}()

	log.Info("starting notescribe", "port", cfg.Port, "ner_url", cfg.NERURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
