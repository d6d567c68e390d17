package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"coursehub/platform/internal/cache"
	"coursehub/platform/internal/config"
	"coursehub/platform/internal/handler"
	"coursehub/platform/internal/handler/middleware"
	"coursehub/platform/internal/model"
	"coursehub/platform/internal/repository"
	"coursehub/platform/internal/service"
	jwtpkg "coursehub/platform/pkg/jwt"
)

func main() {
	// 1. Load configuration
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get sql db", zap.Error(err))
	}
	defer sqlDB.Close()

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Warn("using in-memory state store; OTPs, sessions and cache are not shared between instances")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	userRepo := repository.NewPGUserRepository(db)
	courseRepo := repository.NewPGCourseRepository(db)
	enquiryRepo := repository.NewPGEnquiryRepository(db)

	// 7. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	// 8. Mail delivery
	var mailer service.MailSender
	if cfg.SMTP.Host != "" {
		mailer, err = service.NewSMTPSender(cfg.SMTP)
		if err != nil {
			logger.Fatal("failed to init smtp sender", zap.Error(err))
		}
	} else {
		mailer = service.NewLogSender(logger)
		logger.Warn("smtp not configured, verification codes are written to the log")
	}

	// 9. Initialize services
	sessions := service.NewRefreshTokenStore(stateStore, cfg.JWT.RefreshTokenTTL)
	issuer := service.NewTokenIssuer(jwtManager, sessions)
	otp := service.NewOTPManager(stateStore, mailer, cfg.OTP, logger)
	authService := service.NewAuthService(
		userRepo, stateStore, otp, issuer, sessions,
		cfg.Registration.PendingTTL, logger,
	)
	courseService := service.NewCourseService(courseRepo)
	enquiryService := service.NewEnquiryService(
		enquiryRepo,
		service.NewFixedWindowLimiter(stateStore, "enquiry", cfg.RateLimit.EnquiryLimit, cfg.RateLimit.EnquiryWindow),
	)

	// 10. Initialize handlers
	cookies := service.CookiePolicy{
		Development: cfg.App.IsDevelopment(),
		Domain:      cfg.Cookie.Domain,
		Path:        cfg.Cookie.Path,
	}
	authHandler := handler.NewAuthHandler(authService, cookies, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	enquiryHandler := handler.NewEnquiryHandler(enquiryService, logger)

	// 11. Setup router
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	authLimiter := middleware.NewIPRateLimiter(ctx, cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
	responseCache := cache.New(stateStore, cfg.Cache)

	router := handler.SetupRouter(cfg, logger, issuer, responseCache, authLimiter, authHandler, courseHandler, enquiryHandler)

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}
