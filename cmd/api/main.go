package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"blogify/internal/config"
	"blogify/internal/db"
	"blogify/internal/email"
	apihttp "blogify/internal/http"
	"blogify/internal/imagestore"
	"blogify/internal/otp"
	"blogify/internal/repository"
	"blogify/internal/service"
	"blogify/internal/token"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

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
	blogRepo := repository.NewPgBlogRepository(pool)
	commentRepo := repository.NewPgCommentRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	images := imagestore.NewDisabledStore("image store not configured")
	if cfg.CloudinaryURL != "" {
		store, err := imagestore.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			logger.Warn("cloudinary init failed", zap.Error(err))
		} else {
			images = store
		}
	}

	var (
		ledger     otp.Ledger
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
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			ledger = otp.NewRedisLedger(redisClient)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}
	if ledger == nil {
		memLedger := otp.NewMemoryLedger()
		defer memLedger.Close()
		ledger = memLedger
	}

	tokens := token.NewService(cfg.JWTSecret)
	accountSvc := service.NewAccountService(logger, userRepo, blogRepo, commentRepo, notificationRepo, ledger, emailSender, images, otpLimiter)
	blogSvc := service.NewBlogService(logger, blogRepo, commentRepo, notificationRepo, images)
	notificationSvc := service.NewNotificationService(notificationRepo)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:        logger,
		Tokens:        tokens,
		Users:         userRepo,
		Blogs:         blogRepo,
		Comments:      commentRepo,
		CORSOrigin:    cfg.CORSOrigin,
		UserH:         apihttp.NewUserHandler(logger, accountSvc, tokens, cfg.CookieSecure),
		BlogH:         apihttp.NewBlogHandler(logger, blogSvc),
		NotificationH: apihttp.NewNotificationHandler(logger, notificationSvc),
		AdminH:        apihttp.NewAdminHandler(logger, userRepo, blogRepo, commentRepo),
	})

	addr := ":" + cfg.HTTPPort
	logger.Info("server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
