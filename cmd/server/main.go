package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gfranca/leadboard/internal/config"
	"github.com/gfranca/leadboard/internal/httpx"
	"github.com/gfranca/leadboard/internal/pipeline"
	"github.com/gfranca/leadboard/internal/reconcile"
	"github.com/gfranca/leadboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	costs := reconcile.DefaultUnitCosts()
	if cfg.UnitCostsFile != "" {
		costs, err = reconcile.LoadUnitCosts(cfg.UnitCostsFile)
		if err != nil {
			logger.Error("unit costs", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}
	policy, err := reconcile.ParsePolicy(cfg.UnknownChannelPolicy)
	if err != nil {
		logger.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	st := store.NewSessionStore()
	pl := pipeline.New(costs, policy, logger)
	r := httpx.NewRouter(logger, st, pl, cfg.MaxUploadBytes, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
