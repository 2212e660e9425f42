package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pageza/ideaforge/backend/config"
	"github.com/pageza/ideaforge/backend/internal/api"
	"github.com/pageza/ideaforge/backend/internal/completion"
	"github.com/pageza/ideaforge/backend/internal/database"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/keywords"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/middleware"
	"github.com/pageza/ideaforge/backend/internal/retry"
	"github.com/pageza/ideaforge/backend/internal/router"
	"github.com/pageza/ideaforge/backend/internal/server"
	"github.com/pageza/ideaforge/backend/internal/service"
	"github.com/pageza/ideaforge/backend/internal/sources"
	"github.com/pageza/ideaforge/backend/internal/topics"
)

func main() {
	// .env is optional; real deployments use the environment and secrets
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		// Caching and rate limiting are optional
		logger.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	clients, err := newCompletionClients(cfg, logger)
	if err != nil {
		return err
	}

	dict := topics.Builtin()
	if cfg.Generation.TopicsFile != "" {
		data, err := os.ReadFile(cfg.Generation.TopicsFile)
		if err != nil {
			return fmt.Errorf("failed to read topics file: %w", err)
		}
		if dict, err = topics.LoadJSON(data); err != nil {
			return fmt.Errorf("failed to load topics file: %w", err)
		}
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Generation.RetryAttempts,
		BaseDelay:   cfg.Generation.RetryBaseDelay,
		MaxJitter:   cfg.Generation.RetryMaxJitter,
	}

	extractor := keywords.NewExtractor(clients.keywords, keywords.Config{
		MaxKeywords: cfg.Generation.MaxKeywords,
		Retry:       policy,
	}, logger.Named("keywords"))

	generator := ideas.NewGenerator(clients.ideas, dict, ideas.Config{
		TargetCount: cfg.Generation.TargetCount,
		Retry:       policy,
	}, logger.Named("ideas"), contextSources(cfg, clients.ideas, dict, policy, logger)...)

	authService := service.NewAuthService(db, cfg.JWT.Secret, logger)
	ideaService := service.NewIdeaService(db, service.NewHashEmbedder(), logger)

	var cache service.GenerationCache
	if redisClient != nil {
		cache = service.NewRedisGenerationCache(redisClient, cfg.Generation.CacheTTL)
	}
	generationService := service.NewGenerationService(extractor, generator, ideaService, cache, service.GenerationConfig{
		DefaultCount: cfg.Generation.TargetCount,
		MaxKeywords:  cfg.Generation.MaxKeywords,
	}, logger)

	var planStore service.PlanStore
	if cfg.S3.Enabled {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to configure plan export: %w", err)
		}
		planStore = s3cfg
	}
	planService := service.NewPlanService(clients.plan, ideaService, planStore, service.PlanConfig{
		Model: planModel(cfg),
		Retry: policy,
	}, logger.Named("plan"))

	limiter := middleware.NewGenerationRateLimiter(redisClient, cfg.RateLimit.GenerationLimit, cfg.RateLimit.Window, logger)

	engine := router.SetupRouter(router.Dependencies{
		AuthService:       authService,
		AuthHandler:       api.NewAuthHandler(authService, logger),
		IdeaHandler:       api.NewIdeaHandler(generationService, ideaService, planService, logger),
		RateLimitHandler:  api.NewRateLimitHandler(limiter),
		HealthHandler:     api.NewHealthHandler(db, redisClient),
		GenerationLimiter: limiter,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		Logger:            logger,
	})

	logger.Info("starting server",
		zap.String("env", cfg.Environment.String()),
		zap.String("provider", cfg.Completion.Provider),
		zap.Bool("cache", cache != nil),
		zap.Bool("rate_limit", limiter.Enabled()),
		zap.Bool("plan_export", planStore != nil))

	return server.New(cfg.Server.Addr(), engine, logger).Run(ctx)
}

type completionClients struct {
	ideas    completion.Client
	keywords completion.Client
	plan     completion.Client
}

func newCompletionClients(cfg *config.Config, logger *zap.Logger) (*completionClients, error) {
	settings := completion.Settings{
		Perplexity: completion.PerplexityConfig{
			APIKey:  cfg.Perplexity.APIKey,
			APIURL:  cfg.Perplexity.APIURL,
			Model:   cfg.Perplexity.Model,
			Timeout: cfg.Completion.Timeout,
		},
		OpenAI: completion.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.Completion.Timeout,
		},
		Gemini: completion.GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Completion.Timeout,
		},
	}

	build := func(provider string) (completion.Client, error) {
		if !settings.HasCredentials(provider) {
			// Every caller degrades gracefully without a client
			logger.Warn("no API key for completion provider, using fallbacks", zap.String("provider", provider))
			return nil, nil
		}
		return completion.New(provider, settings, logger.Named("completion"))
	}

	var (
		out completionClients
		err error
	)
	if out.ideas, err = build(cfg.Completion.Provider); err != nil {
		return nil, err
	}
	if out.keywords, err = build(cfg.Completion.KeywordProvider); err != nil {
		return nil, err
	}
	if out.plan, err = build(cfg.Completion.PlanProvider); err != nil {
		return nil, err
	}
	return &out, nil
}

func contextSources(cfg *config.Config, client completion.Client, dict *topics.Dictionary, policy retry.Policy, logger *zap.Logger) []ideas.ContextSource {
	var out []ideas.ContextSource
	if cfg.Generation.Research && client != nil {
		out = append(out, sources.NewResearch(client, "", policy, logger.Named("research")))
	}
	if cfg.Reddit.Enabled {
		out = append(out, sources.NewReddit(sources.RedditConfig{
			BaseURL:       cfg.Reddit.BaseURL,
			UserAgent:     cfg.Reddit.UserAgent,
			RequestDelay:  cfg.Reddit.RequestDelay,
			MaxPosts:      cfg.Reddit.MaxPosts,
			MaxSubreddits: cfg.Reddit.MaxSubreddits,
		}, dict, logger.Named("reddit")))
	}
	if cfg.Twitter.Enabled {
		out = append(out, sources.NewX(sources.XConfig{
			BearerToken: cfg.Twitter.BearerToken,
			BaseURL:     cfg.Twitter.BaseURL,
			MaxPosts:    cfg.Twitter.MaxPosts,
		}, dict, logger.Named("x")))
	}
	return out
}

func planModel(cfg *config.Config) string {
	if cfg.Completion.PlanProvider == completion.ProviderGemini {
		return cfg.Gemini.PlanModel
	}
	return ""
}
