package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	httpadapter "shiplife/internal/adapter/http"
	"shiplife/internal/bootstrap"
	"shiplife/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()
	engine, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build engine", "error", err)
		os.Exit(1)
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr), server.WithExitWaitTime(3*time.Second))
	newHandler(engine).RegisterRoutes(s)
	s.OnShutdown = append(s.OnShutdown, func(ctx context.Context) {
		logger.Info("flushing save before shutdown")
		if err := engine.Close(ctx); err != nil {
			logger.Error("final save failed", "error", err)
		}
	})

	logger.Info("shiplife server listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
	s.Spin()
}

func newHandler(e *bootstrap.Engine) httpadapter.Handler {
	return httpadapter.Handler{
		StatusUC:        e.Status,
		MissionsUC:      e.Missions,
		LoadoutsUC:      e.Loadouts,
		DropsUC:         e.Drops,
		TrophiesUC:      e.Trophies,
		WorkshopUC:      e.Workshop,
		NotificationsUC: e.Notifications,
		Saves:           e.Saves,
		KPI:             e.Metrics,
	}
}
