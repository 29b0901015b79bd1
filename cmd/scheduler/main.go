package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Neo-sk01/newmatter-sub000/internal/config"
	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(&logger.Config{Level: logger.LogLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	log := logger.GetDefault().With("service", "scheduler")

	if cfg.CronSecret == "" {
		log.Warn("CRON_SECRET not set; the follow-up endpoint will reject every run")
	}
	log.Info("Starting Scheduler Service...", "target", cfg.FollowUpTargetURL, "schedule", cfg.FollowUpCron)

	client := scheduler.NewHTTPFollowUpClient(cfg.FollowUpTargetURL, cfg.CronSecret)
	svc := scheduler.NewService(client, cfg.FollowUpCron, log)
	if err := svc.Start(); err != nil {
		log.Error("Failed to start Scheduler Service", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Scheduler Service is shutting down...")
	svc.Stop()
	log.Info("Scheduler Service stopped gracefully.")
}
