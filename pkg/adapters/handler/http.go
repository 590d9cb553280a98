package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/logger"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/metrics"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
)

type HTTPHandler struct {
	links     ports.LinkService
	analytics ports.AnalyticsService
	metrics   *metrics.Metrics
	log       *slog.Logger

	trustProxy bool
}

func NewHTTPHandler(links ports.LinkService, analytics ports.AnalyticsService, m *metrics.Metrics) *HTTPHandler {
	return &HTTPHandler{
		links:     links,
		analytics: analytics,
		metrics:   m,
		log:       logger.WithComponent("http"),
	}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
	Title       string `json:"title"`
	CustomCode  string `json:"custom_code,omitempty"`
}

// Analytics serves GET/POST /api/v1/analytics?date=&date_end=&shorturl=
func (h *HTTPHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req := domain.AnalyticsRequest{
		ShortCode: r.Form.Get("shorturl"),
		DateStart: r.Form.Get("date"),
		DateEnd:   r.Form.Get("date_end"),
	}
	for name, p := range map[string]domain.Param{
		"date":     domain.ParamDate,
		"date_end": domain.ParamDateEnd,
		"shorturl": domain.ParamShortURL,
	} {
		if r.Form.Has(name) {
			req.Supplied |= p
		}
	}

	resp, err := h.analytics.Handle(r.Context(), req)
	if err != nil {
		h.countAnalytics("error")
		h.log.ErrorContext(r.Context(), "analytics failed",
			"subject", SubjectFromContext(r.Context()),
			"shorturl", req.ShortCode, "date", req.DateStart, "date_end", req.DateEnd, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if resp.StatusCode == http.StatusOK {
		h.countAnalytics("success")
	} else {
		h.countAnalytics("bad_request")
	}
	writeJSON(w, resp.StatusCode, resp)
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	link, err := h.links.Shorten(r.Context(), req.OriginalURL, req.Title, req.CustomCode)
	switch {
	case errors.Is(err, services.ErrMissingOriginal):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrCodeTaken):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.log.ErrorContext(r.Context(), "create link failed", "subject", SubjectFromContext(r.Context()), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.log.InfoContext(r.Context(), "link created", "short_code", link.ShortCode, "subject", SubjectFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, link)
}

// Redirect to the original URL and log the visit
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		http.Error(w, "Short code missing", http.StatusBadRequest)
		return
	}

	originalURL, err := h.links.GetOriginalURL(r.Context(), code)
	if errors.Is(err, services.ErrLinkNotFound) {
		http.Error(w, "Link not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "resolve link failed", "short_code", code, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("no_stat") == "" {
		// A lost visit must not break the redirect.
		if err := h.links.RecordVisit(r.Context(), code, r.Referer(), r.UserAgent(), clientIP(r, h.trustProxy)); err != nil {
			h.log.WarnContext(r.Context(), "record visit failed", "short_code", code, "error", err)
		} else if h.metrics != nil {
			h.metrics.VisitsRecorded.Inc()
		}
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

func (h *HTTPHandler) countAnalytics(outcome string) {
	if h.metrics != nil {
		h.metrics.AnalyticsRequests.WithLabelValues(outcome).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
