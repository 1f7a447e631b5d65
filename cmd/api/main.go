package main

import (
	"context"
	"crypto/tls"
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

	"github.com/bookwise-ai/bookwise/internal/api/router"
	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/internal/bookinglog"
	"github.com/bookwise-ai/bookwise/internal/calendar"
	appconfig "github.com/bookwise-ai/bookwise/internal/config"
	"github.com/bookwise-ai/bookwise/internal/dialogue"
	"github.com/bookwise-ai/bookwise/internal/history"
	"github.com/bookwise-ai/bookwise/internal/http/handlers"
	"github.com/bookwise-ai/bookwise/internal/nlu"
	"github.com/bookwise-ai/bookwise/internal/notify"
	"github.com/bookwise-ai/bookwise/internal/observability/metrics"
	"github.com/bookwise-ai/bookwise/internal/webchat"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookwise API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"calendar_backend", cfg.CalendarBackend,
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	ctx := context.Background()

	// Calendar backend
	var backend calendar.Backend
	switch cfg.CalendarBackend {
	case "google":
		gb, err := calendar.NewGoogleBackend(ctx, calendar.GoogleConfig{
			CalendarID:      cfg.GoogleCalendarID,
			CredentialsFile: cfg.GoogleCredentialsJSON,
		}, logger)
		if err != nil {
			logger.Error("failed to build google calendar backend", "error", err)
			os.Exit(1)
		}
		backend = gb
	default:
		backend = calendar.NewMemoryBackend()
	}

	// Transcript store (optional)
	var transcript *history.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, transcripts disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			transcript = history.NewStore(redisClient)
			logger.Info("transcript store enabled", "addr", cfg.RedisAddr)
		}
	}

	// Booking log (optional)
	var bookingLog *bookinglog.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		bookingLog = bookinglog.NewStore(pool)
		logger.Info("booking log enabled")
	}

	// Booking notifications (optional)
	var notifier *notify.Service
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil && cfg.OwnerEmail != "" {
		notifier = notify.NewService(sender, notify.Config{
			OwnerEmail: cfg.OwnerEmail,
			OwnerName:  cfg.OwnerName,
		}, logger)
		logger.Info("booking notifications enabled", "owner", cfg.OwnerEmail)
	}

	// Core services
	dialogueMetrics := metrics.NewDialogueMetrics(prometheus.DefaultRegisterer)
	engine := availability.NewEngine(availability.BusinessHours{
		StartHour: cfg.BusinessHoursStart,
		EndHour:   cfg.BusinessHoursEnd,
	}, cfg.SlotStrideMinutes, loc)
	executor := booking.NewExecutor(backend, loc, logger)

	svcCfg := dialogue.Config{
		Extractor: nlu.NewExtractor(loc, cfg.DefaultDurationMinutes, cfg.DefaultMeetingTitle),
		Engine:    engine,
		Executor:  executor,
		Backend:   backend,
		Logger:    logger,
		Metrics:   dialogueMetrics,
	}
	if bookingLog != nil {
		svcCfg.Recorder = bookingLog
	}
	if notifier != nil {
		svcCfg.Notifier = notifier
	}
	svc := dialogue.NewService(svcCfg)

	// HTTP surface
	r := router.New(&router.Config{
		Logger:             logger,
		Chat:               handlers.NewChatHandler(svc, transcript, logger),
		Book:               handlers.NewBookHandler(executor, bookingLog, cfg.DefaultDurationMinutes, cfg.DefaultMeetingTitle, logger),
		Health:             handlers.NewHealthHandler(cfg.Env),
		WebChat:            webchat.NewHandler(svc, transcript, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSec:    2,
		RateLimitBurst:     10,
	})

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
}
