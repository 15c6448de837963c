package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"esg-brsr/internal/config"
	"esg-brsr/internal/db"
	"esg-brsr/internal/email"
	apihttp "esg-brsr/internal/http"
	"esg-brsr/internal/llm"
	"esg-brsr/internal/queue"
	"esg-brsr/internal/repository"
	"esg-brsr/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	companyRepo := repository.NewPgCompanyRepository(pool)
	indicatorRepo := repository.NewPgIndicatorRepository(pool)
	chunkRepo := repository.NewPgChunkRepository(pool)
	extractionRepo := repository.NewPgExtractionRepository(pool)
	scoreRepo := repository.NewPgScoreRepository(pool)
	documentRepo := repository.NewPgDocumentRepository(pool)

	// El catálogo se carga una sola vez por vida del worker.
	catalog, err := indicatorRepo.LoadCatalog(ctx)
	if err != nil {
		logger.Fatal("load indicator catalog", zap.Error(err))
	}
	logger.Info("indicator catalog loaded", zap.Int("indicators", len(catalog)))

	rangeRules, err := service.LoadRangeRules(cfg.RangeRulesPath)
	if err != nil {
		logger.Fatal("load range rules", zap.Error(err))
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMRPM, log.Default())
	embedder := llm.NewHTTPEmbedder(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel)

	retriever := service.NewPgVectorRetriever(embedder, chunkRepo)
	policy := service.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
	chain := service.NewExtractionChain(retriever, llmClient, policy, cfg.RetrievalTopK, logger)
	batchExtractor := service.NewBatchExtractor(chain, chunkRepo, logger)
	validator := service.NewValidator(rangeRules)
	calculator := service.NewScoreCalculator(service.PillarWeights{
		Environmental: cfg.PillarWeightE,
		Social:        cfg.PillarWeightS,
		Governance:    cfg.PillarWeightG,
	})

	pipeline := service.NewDocumentPipeline(
		companyRepo,
		documentRepo,
		extractionRepo,
		scoreRepo,
		batchExtractor,
		validator,
		calculator,
		catalog,
		logger,
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(ctxPing).Err(); err != nil {
		cancel()
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	cancel()

	statusStore := queue.NewRedisStatusStore(redisClient)

	alertSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" && cfg.AlertTo != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.AlertTo, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			alertSender = sender
		}
	}

	consumer := queue.NewConsumer(redisClient, pipeline, statusStore, alertSender, queue.ConsumerConfig{
		TaskQueue:     cfg.TaskQueue,
		ParkedQueue:   cfg.ParkedQueue,
		MaxDeliveries: cfg.MaxDeliveries,
	}, logger)

	statusHandler := apihttp.NewStatusHandler(logger, statusStore)
	router := apihttp.NewRouter(logger, statusHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("status server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("status server error", zap.Error(err))
		}
	}()

	if err := consumer.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("consumer stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("worker stopped")
}
