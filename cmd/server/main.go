package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/config"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/logger"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/metrics"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize Services
	linkService := services.NewLinkService(repo)
	analyticsService := services.NewAnalyticsServiceForRepo(repo, cfg.DeviceStats)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	limiter := handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)
	go limiter.Cleanup(ctx, 5*time.Minute)

	// Initialize Router
	mux := handler.NewRouter(cfg, linkService, analyticsService, m, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "port", cfg.Port, "device_stats", cfg.DeviceStats)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
