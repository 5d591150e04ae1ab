package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/labease/labease-platform/internal/api/router"
	"github.com/labease/labease-platform/internal/booking"
	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/chatlog"
	appconfig "github.com/labease/labease-platform/internal/config"
	"github.com/labease/labease-platform/internal/contact"
	"github.com/labease/labease-platform/internal/dialogue"
	"github.com/labease/labease-platform/internal/notify"
	appmetrics "github.com/labease/labease-platform/internal/observability/metrics"
	"github.com/labease/labease-platform/internal/retrieval"
	"github.com/labease/labease-platform/internal/webchat"
	"github.com/labease/labease-platform/pkg/logging"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting labease API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: Postgres when configured, in-memory otherwise so the
	// server still runs for local demos.
	var (
		catalogRepo catalog.Repository
		bookingRepo booking.Repository
		chatlogRepo chatlog.Repository
		contactRepo contact.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		catalogRepo = catalog.NewPostgresRepository(pool)
		bookingRepo = booking.NewPostgresRepository(pool)
		chatlogRepo = chatlog.NewPostgresRepository(pool)
		contactRepo = contact.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		memCatalog := catalog.NewInMemoryRepository()
		if _, _, err := catalog.SeedSample(ctx, memCatalog); err != nil {
			logger.Error("failed to seed demo catalog", "error", err)
			os.Exit(1)
		}
		catalogRepo = memCatalog
		bookingRepo = booking.NewInMemoryRepository()
		chatlogRepo = chatlog.NewInMemoryRepository()
		contactRepo = contact.NewInMemoryRepository()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	// Email: SendGrid when an API key is present, log-only stub otherwise.
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		emailSender = notify.NewStubEmailSender(logger)
	}
	registry := prometheus.NewRegistry()
	chatMetrics := appmetrics.NewChatMetrics(registry)

	notifier := notify.NewService(emailSender, logger).WithMetrics(chatMetrics)

	retrievalService := retrieval.NewService(catalogRepo)
	bookingService := booking.NewService(bookingRepo, catalogRepo, notifier, logger)
	chatLog := chatlog.NewService(chatlogRepo, redisClient, nil, logger)
	contactService := contact.NewService(contactRepo, catalogRepo, emailSender, cfg.AdminEmail, logger)

	sessions := dialogue.NewRedisSessionStore(redisClient, dialogue.RedisSessionStoreConfig{
		SelectedTestTTL: cfg.SelectedTestTTL,
		DetailsTTL:      cfg.DetailsTTL,
		LockTTL:         cfg.SessionLockTTL,
	}, nil)
	engine := dialogue.NewEngine(sessions, retrievalService, catalogRepo, bookingService, chatLog, chatMetrics, logger)

	bookingHandler := booking.NewHandler(bookingService, logger)
	chatHandler := dialogue.NewHandler(engine, retrievalService, chatLog, chatLog, logger)
	contactHandler := contact.NewHandler(contactService, logger)
	webchatHandler := webchat.NewHandler(engine, chatLog, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		ChatHandler:        chatHandler,
		ContactHandler:     contactHandler,
		WebChatHandler:     webchatHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PortalJWTSecret:    cfg.PortalJWTSecret,
		ChatRateLimit:      cfg.ChatRateLimit,
		ChatRateBurst:      cfg.ChatRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
