package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"merapaper/internal/chat"
	"merapaper/internal/config"
	"merapaper/internal/db"
	"merapaper/internal/email"
	apihttp "merapaper/internal/http"
	"merapaper/internal/news"
	"merapaper/internal/repository"
	"merapaper/internal/scheduler"
	"merapaper/internal/service"
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

	userRepo := repository.NewPgUserRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	chatSender := chat.NewDisabledSender("chat sender not configured")
	if cfg.TelegramBotToken != "" {
		sender, err := chat.NewTelegramSender(cfg.TelegramBotToken)
		if err != nil {
			logger.Warn("telegram sender init failed", zap.Error(err))
		} else {
			chatSender = sender
		}
	}

	var (
		otpStore   service.OTPStore
		otpLimiter service.OTPRateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory otp store", zap.Error(err))
		} else {
			otpStore = service.NewRedisOTPStore(redisClient)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	authSvc := service.NewAuthService(logger, userRepo, otpStore, emailSender, otpLimiter, time.Duration(cfg.OTPTTLMinutes)*time.Minute)

	provider := news.NewHTTPClient(cfg.NewsBaseURL, cfg.NewsAPIKey, logger)
	newsSvc := service.NewNewsService(provider, userRepo)
	digestSvc := service.NewDigestService(logger, userRepo, newsSvc, emailSender, chatSender)

	digestJob, err := scheduler.NewDaily(logger, cfg.DigestTime, func(ctx context.Context) {
		if err := digestSvc.Run(ctx); err != nil {
			logger.Error("digest run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("scheduler init", zap.Error(err))
	}
	digestJob.Start()

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	newsHandler := apihttp.NewNewsHandler(logger, newsSvc)
	router := apihttp.NewRouter(logger, authHandler, newsHandler, jwtSvc, func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if err := digestJob.StopWithContext(shutdownCtx); err != nil {
		logger.Warn("scheduler shutdown", zap.Error(err))
	}
}
