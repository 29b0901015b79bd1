package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Neo-sk01/newmatter-sub000/internal/config"
	"github.com/Neo-sk01/newmatter-sub000/internal/database"
	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/mailer"
	"github.com/Neo-sk01/newmatter-sub000/internal/queue"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(&logger.Config{Level: logger.LogLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	log := logger.GetDefault().With("service", "mailer")

	// Delivery works without a database; outcomes are then only logged.
	var status mailer.StatusRecorder
	if db, err := database.Connect(cfg.DSN(), log, false); err != nil {
		log.Warn("Database unavailable; delivery status will not be recorded", "error", err)
	} else {
		status = store.New(db)
	}

	m := mailer.New(mailer.Config{
		SMTPHost:    cfg.SMTPHost,
		SMTPPort:    cfg.SMTPPort,
		SMTPUser:    cfg.SMTPUser,
		SMTPPass:    cfg.SMTPPass,
		DefaultFrom: cfg.DefaultFromEmail,
	}, status, log)
	if m.Simulated() {
		log.Warn("SMTP_HOST or SMTP_PORT not configured. Email sending will be simulated.")
	}

	nc, err := queue.Connect(cfg.NATSURL, "outreach-mailer")
	if err != nil {
		log.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Drain()
	log.Info("Connected to NATS server", "url", cfg.NATSURL)

	if _, err := m.Subscribe(nc, cfg.EmailSubject, cfg.EmailQueueGroup); err != nil {
		log.Error("Failed to subscribe", "error", err)
		os.Exit(1)
	}
	log.Info("Mailer is running. Waiting for messages...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Mailer is shutting down...")
}
