package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Neo-sk01/newmatter-sub000/internal/cache"
	"github.com/Neo-sk01/newmatter-sub000/internal/config"
	"github.com/Neo-sk01/newmatter-sub000/internal/database"
	_ "github.com/Neo-sk01/newmatter-sub000/internal/docs"
	"github.com/Neo-sk01/newmatter-sub000/internal/handlers"
	"github.com/Neo-sk01/newmatter-sub000/internal/importer"
	"github.com/Neo-sk01/newmatter-sub000/internal/llm"
	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/outreach"
	"github.com/Neo-sk01/newmatter-sub000/internal/queue"
	"github.com/Neo-sk01/newmatter-sub000/internal/store"
)

// @title Outreach API
// @version 1.0
// @description Lead import, prompt-driven email drafting and follow-up sequences.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(&logger.Config{Level: logger.LogLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	log := logger.GetDefault()

	if cfg.LogLevel != string(logger.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN(), log, cfg.LogLevel == string(logger.DebugLevel))
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	st := store.New(db)

	responseCache, closeCache := openCache(cfg, log)
	defer closeCache()

	deps := handlers.Deps{
		Store:      st,
		Cache:      responseCache,
		CacheTTL:   cfg.CacheTTL,
		CronSecret: cfg.CronSecret,
	}

	// Interfaces stay nil, not typed-nil pointers, when the model is absent.
	var suggester importer.MappingSuggester
	var drafter *llm.Drafter
	if cfg.LLMConfigured() {
		model, err := llm.NewModel(llm.Config{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			APIKey:   cfg.LLMAPIKey,
			BaseURL:  cfg.LLMBaseURL,
			Timeout:  cfg.LLMTimeout,
		})
		if err != nil {
			log.Warn("Language model unavailable; AI mapping and drafting disabled", "provider", cfg.LLMProvider, "error", err)
		} else {
			suggester = llm.NewMappingSuggester(model, cfg.LLMTimeout)
			drafter = llm.NewDrafter(model, cfg.LLMTimeout)
			deps.Drafter = drafter
			log.Info("Language model configured", "provider", cfg.LLMProvider, "model", cfg.LLMModel)
		}
	} else {
		log.Warn("LLM_API_KEY not set; AI mapping and drafting disabled")
	}
	deps.Importer = importer.NewService(suggester, st, cfg.ImportMaxRows)

	nc, err := queue.Connect(cfg.NATSURL, "outreach-server")
	if err != nil {
		log.Warn("NATS unavailable; follow-ups disabled", "url", cfg.NATSURL, "error", err)
	} else {
		defer nc.Drain()
		if drafter != nil {
			deps.FollowUps = outreach.NewService(st, drafter, queue.NewPublisher(nc, cfg.EmailSubject), cfg.FollowUpBatchSize)
		} else {
			log.Warn("Follow-ups disabled: no language model to draft emails")
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	handlers.New(deps).Register(router)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to run server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	log.Info("Server exiting")
}

// openCache prefers Redis so several server instances share entries, and
// falls back to the in-process cache.
func openCache(cfg *config.Config, log logger.Logger) (cache.Cache, func()) {
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rc, client, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err == nil {
			log.Info("Using Redis response cache")
			return rc, func() { client.Close() }
		}
		log.Warn("Redis unavailable; using in-process cache", "error", err)
	}
	mem, err := cache.NewMemory(0)
	if err != nil {
		log.Warn("Response cache disabled", "error", err)
		return nil, func() {}
	}
	return mem, mem.Close
}
