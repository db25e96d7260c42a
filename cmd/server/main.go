package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pogen/internal/api"
	"github.com/dgallion1/pogen/internal/config"
	"github.com/dgallion1/pogen/internal/extract"
	"github.com/dgallion1/pogen/internal/history"
	"github.com/dgallion1/pogen/internal/mapping"
	"github.com/dgallion1/pogen/internal/pipeline"
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

	// Field-mapping rules: defaults, optionally overlaid by a rule file.
	rules := mapping.Defaults()
	if cfg.RulesPath != "" {
		var err error
		rules, err = mapping.LoadOver(cfg.RulesPath, rules)
		if err != nil {
			log.Error("invalid rule file", "path", cfg.RulesPath, "error", err)
			os.Exit(1)
		}
		log.Info("loaded rule file", "path", cfg.RulesPath, "fields", rules.Len())
	}
	ex := extract.New(rules, log)

	// Conversion history.
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Error("failed to open history store", "path", cfg.HistoryPath, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ex, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

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

		store.Close()
	}()

	log.Info("starting pogen", "port", cfg.Port, "fields", rules.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
