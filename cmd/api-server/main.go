package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/router"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api_server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultOptions(), logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db, logger); err != nil {
		return err
	}

	limiter, closeLimiter, err := newAuthLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	signupService := service.NewSignupService(userRepo, newSender(cfg, logger), service.SignupConfig{
		MailFrom:    cfg.MailFrom,
		MailTimeout: cfg.MailTimeout,
	}, logger)
	authService := service.NewAuthService(userRepo, cfg)
	userService := service.NewUserService(userRepo, logger)
	categoryService := service.NewTaxonomyService("category", categoryRepo, cfg.TaxonomyCacheTTL, logger)
	genreService := service.NewTaxonomyService("genre", genreRepo, cfg.TaxonomyCacheTTL, logger)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, logger)
	commentService := service.NewCommentService(commentRepo, reviewRepo, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.New(router.Deps{
		Logger:         logger,
		TokenValidator: authService,
		AuthLimiter:    limiter,
		Metrics:        cfg.PrometheusEnabled,
		Auth:           handler.NewAuthHandler(signupService, authService),
		Users:          handler.NewUserHandler(userService),
		Categories:     handler.NewTaxonomyHandler("categories", categoryService),
		Genres:         handler.NewTaxonomyHandler("genres", genreService),
		Titles:         handler.NewTitleHandler(titleService),
		Reviews:        handler.NewReviewHandler(reviewService),
		Comments:       handler.NewCommentHandler(commentService),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		// signup holds the request open while mail is delivered
		WriteTimeout:   cfg.MailTimeout + 20*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_server_listening", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received_shutdown_signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server_stopped_gracefully")
	return nil
}

// newAuthLimiter uses Redis when configured so every replica shares one budget,
// and an in-process limiter otherwise.
func newAuthLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (middleware.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		limiter, err := middleware.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, 10_000)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("rate_limiter", "backend", "memory")
		return limiter, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// the limiter fails open, so an unreachable Redis at boot is not fatal
		logger.Warn("redis_unreachable", "addr", opts.Addr, "error", err)
	}
	logger.Info("rate_limiter", "backend", "redis", "addr", opts.Addr)

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis_close_failed", "error", err)
		}
	}
	return middleware.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow), closeFn, nil
}

func newSender(cfg *config.Config, logger *slog.Logger) mailer.Sender {
	if cfg.MailBackend != "smtp" {
		return mailer.NewLogSender(logger)
	}
	smtpSender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		UseTLS:   cfg.SMTPTLS,
	})
	return mailer.NewBreakerSender(smtpSender, mailer.BreakerSettings{Name: "smtp"}, logger)
}
