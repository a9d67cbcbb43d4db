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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/docrank/internal/api"
	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	norm := cfg.Normalizer()
	runStats := stats.NewRunStats(time.Hour)
	metrics := pipeline.NewMetrics(nil)

	orch := pipeline.NewOrchestrator(cfg, pipeline.WorkerConfig{
		Normalizer:      norm,
		Parser:          parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		MinSectionWords: cfg.MinSectionWords,
		RunTimeout:      cfg.RunTimeout,
	}, runStats, metrics, log)
	// Workers outlive the signal; Stop ends them after HTTP has drained.
	orch.Start(context.WithoutCancel(ctx))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, norm, promhttp.Handler(), log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting docrank",
			"port", cfg.Port,
			"workers", cfg.WorkerCount,
			"top_k", cfg.TopK,
			"stemming", cfg.Stemming,
		)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
		orch.Stop()
		os.Exit(1)
	case <-ctx.Done():
	}

	// Stop accepting runs before draining the queue.
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	orch.Stop()
	log.Info("stopped")
}
