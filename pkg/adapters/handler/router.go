package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/config"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/metrics"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
)

// NewRouter creates and configures the main application router.
// m may be nil to disable metrics; limiter may be nil to disable rate limiting.
func NewRouter(cfg *config.Config, links ports.LinkService, analytics ports.AnalyticsService, m *metrics.Metrics, limiter *RateLimiter) http.Handler {
	h := NewHTTPHandler(links, analytics, m)
	h.trustProxy = cfg.TrustProxy
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("GET /open/{short_code}", Instrument(m, "/open/{short_code}", http.HandlerFunc(h.Redirect)))
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Browser sign-in, mounted once a Google client is configured
	if cfg.GoogleClientID != "" {
		authHandler := NewAuthHandler(cfg)
		mux.HandleFunc("GET /auth/google/login", authHandler.Login)
		mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
		mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	}

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.Handle("POST /api/v1/links", Instrument(m, "/api/v1/links", http.HandlerFunc(h.Create)))
	protectedMux.Handle("GET /api/v1/analytics", Instrument(m, "/api/v1/analytics", http.HandlerFunc(h.Analytics)))
	protectedMux.Handle("POST /api/v1/analytics", Instrument(m, "/api/v1/analytics", http.HandlerFunc(h.Analytics)))

	var api http.Handler = mw.AuthMiddleware(protectedMux)
	if limiter != nil {
		api = limiter.Limit(api)
	}
	mux.Handle("/api/v1/", api)

	return mux
}
