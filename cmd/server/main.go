package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docask/internal/agent"
	"github.com/dgallion1/docask/internal/api"
	"github.com/dgallion1/docask/internal/config"
	"github.com/dgallion1/docask/internal/docstore"
	"github.com/dgallion1/docask/internal/ingest"
	"github.com/dgallion1/docask/internal/provider"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	retry := provider.Policy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}

	embedder, err := provider.NewEmbedder(provider.EmbedderConfig{
		BaseURL:   cfg.OllamaURL,
		Model:     cfg.EmbedModel,
		BatchSize: cfg.EmbedBatchSize,
		RateLimit: cfg.EmbedRateLimit,
		Retry:     retry,
	})
	if err != nil {
		log.Error("initialize embedder", "error", err)
		os.Exit(1)
	}

	completer, err := provider.NewCompleter(provider.CompleterConfig{
		BaseURL:     cfg.OllamaURL,
		Model:       cfg.ChatModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Retry:       retry,
	})
	if err != nil {
		log.Error("initialize completer", "error", err)
		os.Exit(1)
	}

	store := docstore.New()
	ingester := ingest.NewService(store, embedder, completer, log, cfg)
	orch := agent.NewOrchestrator(completer, embedder, log, cfg.TopK, cfg.FollowUpCount)

	srv := api.NewServer(store, ingester, orch, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docask", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
