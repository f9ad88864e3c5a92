package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/edgechat/backend/internal/api"
	"github.com/edgechat/backend/internal/core/service"
	"github.com/edgechat/backend/internal/core/token"
	"github.com/edgechat/backend/internal/infrastructure/db/mongo"
	"github.com/edgechat/backend/internal/infrastructure/db/postgres"
	"github.com/edgechat/backend/internal/infrastructure/db/redis"
	"github.com/edgechat/backend/internal/infrastructure/llm/gemini"
	"github.com/edgechat/backend/internal/infrastructure/queue"
	"github.com/edgechat/backend/internal/pkg/config"
	"github.com/edgechat/backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Stores ---
	db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()

	// --- Wiring ---
	codec := token.NewCodec(cfg.JWTSecret)

	userRepo := postgres.NewUserRepository(db)
	usageRepo := postgres.NewUsageRepository(db)
	chatRepo := mongo.NewChatRepository(mongoDB)
	counter := redis.NewCounterStore(redisClient)

	llmClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)

	authService := service.NewAuthService(
		userRepo,
		codec,
		time.Duration(cfg.JWT.AccessExpireMinutes)*time.Minute,
		time.Duration(cfg.JWT.RefreshExpireDays)*24*time.Hour,
	)
	chatService := service.NewChatService(chatRepo, llmClient, log)
	usageService := service.NewUsageService(usageRepo)

	// The recorder outlives the signal context so in-flight usage records
	// still drain while the server shuts down.
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()

	recorder := queue.NewUsageRecorder(usageRepo, 0, log)
	recorder.Start(recorderCtx)

	e := api.NewRouter(api.Dependencies{
		Logger:            log,
		Postgres:          db,
		Mongo:             mongoDB,
		Redis:             redisClient,
		Codec:             codec,
		Counter:           counter,
		AuthService:       authService,
		ChatService:       chatService,
		UsageService:      usageService,
		LLM:               llmClient,
		UsageRecorder:     recorder,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopRecorder()
	recorder.Stop()
}
