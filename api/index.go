package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/config"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/logger"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/metrics"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// On Vercel a local sqlite file is ephemeral; point DATABASE_URL at Turso.
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	mux = handler.NewRouter(cfg,
		services.NewLinkService(repo),
		services.NewAnalyticsServiceForRepo(repo, cfg.DeviceStats),
		m,
		handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy),
	)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
