// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paperlearn/internal/config"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/adapter"
	aiAdapters "paperlearn/internal/infra/adapters/ai"
	srcAdapters "paperlearn/internal/infra/adapters/source"
	pg "paperlearn/internal/infra/db/postgres"
	"paperlearn/internal/infra/logging"
	"paperlearn/internal/infra/metrics"
	"paperlearn/internal/infra/ratelimit"
	red "paperlearn/internal/infra/redis"
	"paperlearn/internal/infra/sched"
	"paperlearn/internal/infra/storage"
	"paperlearn/internal/infra/web"
	"paperlearn/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI fallback, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis (brain-context cache; optional) ----
	var contextCache usecase.ContextCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		contextCache = red.NewContextCache(redisClient, cfg.Redis.TTL)
	} else {
		logger.Warn().Msg("redis.url not set; brain-context responses will not be cached")
	}

	// ---- Object storage ----
	var store storage.Store
	switch cfg.Storage.Backend {
	case "gcs":
		store, err = storage.NewGCSStore(ctx, cfg.Storage.Bucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("gcs store init failed")
		}
	case "local":
		store, err = storage.NewLocalStore(cfg.Storage.BaseDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("local store init failed")
		}
	case "memory":
		store = storage.NewMemoryStore()
	default:
		logger.Fatal().Str("backend", cfg.Storage.Backend).Msg("unknown storage backend")
	}

	// ---- AI adapter (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode, no provider key)")
	default:
		logger.Fatal().Msg("no AI provider configured: set ai.gemini_key or ai.openai_key")
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)

	// ---- Paper sources ----
	httpClient := &http.Client{Timeout: cfg.Sources.Timeout}
	sources := map[model.PaperSource]adapter.PaperSourceAdapter{
		model.PaperSourceArxiv:      srcAdapters.NewArxivAdapter(httpClient, cfg.Sources.ArxivBaseURL),
		model.PaperSourceOpenReview: srcAdapters.NewOpenReviewAdapter(httpClient, cfg.Sources.OpenReviewBaseURL),
	}

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	paperRepo := pg.NewPaperRepo(pool)
	articleRepo := pg.NewArticleRepo(pool)
	jobRepo := pg.NewJobRepo(pool)
	toolRepo := pg.NewToolRepo(pool)
	rateRepo := pg.NewRateLimitRepo(pool)

	// ---- Use cases ----
	paperUC := usecase.NewPaperUseCase(paperRepo)
	articleUC := usecase.NewArticleUseCase(articleRepo)
	toolUC := usecase.NewToolUseCase(toolRepo)
	brainUC := usecase.NewBrainContextUseCase(contextCache, ai, cfg.AI.Model, logger)
	jobUC := usecase.NewJobUseCase(
		txm, jobRepo, paperRepo, articleRepo,
		sources, ai, store,
		cfg.AI.Model, cfg.AI.ImageModel, cfg.AI.MaxPromptTokens,
		logger,
	)

	// ---- HTTP server ----
	limiter := ratelimit.New(rateRepo)
	srv := web.NewServer(
		paperUC, articleUC, toolUC, brainUC, jobUC,
		limiter, store,
		cfg.Admin.Token, cfg.RateLimit.Limit, cfg.RateLimit.Window,
		logger,
	)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(cfg.Server.RequestTimeout),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Rate-limit sweep worker ----
	sweeper := sched.NewSweepWorker(cfg.RateLimit.SweepEach, cfg.RateLimit.Retention, rateRepo, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
