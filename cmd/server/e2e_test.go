package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/config"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/metrics"
)

const (
	chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func TestIntegration(t *testing.T) {
	// 1. Setup DB
	dbURL := "file:memdb1?mode=memory&cache=shared"
	repo, err := sqlite.NewSQLiteRepository(dbURL)
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	defer repo.Close()

	// 2. Setup Services & Router
	cfg := &config.Config{JWTSecret: "e2e-secret", DeviceStats: true}
	mux := handler.NewRouter(cfg,
		services.NewLinkService(repo),
		services.NewAnalyticsServiceForRepo(repo, cfg.DeviceStats),
		metrics.New(),
		handler.NewRateLimiter(1000, 1000, false),
	)

	server := httptest.NewServer(mux)
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	token, err := handler.IssueToken(cfg.JWTSecret, "e2e", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	do := func(method, path string, body io.Reader, headers map[string]string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, server.URL+path, body)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// TEST 1: Unauthenticated API call
	resp, err := client.Get(server.URL + "/api/v1/analytics?date=2024-01-01&shorturl=abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}

	// TEST 2: Create Link
	payload := map[string]interface{}{
		"original_url": "https://example.com",
		"title":        "Example",
		"custom_code":  "abc",
	}
	body, _ := json.Marshal(payload)
	resp = do("POST", "/api/v1/links", bytes.NewBuffer(body), map[string]string{"Content-Type": "application/json"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	// TEST 3: Redirect records a visit
	resp = do("GET", "/open/abc", nil, map[string]string{"User-Agent": chromeWindows})
	if resp.StatusCode != http.StatusFound {
		t.Errorf("Redirect expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com" {
		t.Errorf("Redirect location mismatch: %s", loc)
	}

	// TEST 4: Analytics for today includes that visit
	today := time.Now().UTC().Format(domain.DateLayout)
	resp = do("GET", "/api/v1/analytics?date="+today+"&shorturl=abc", nil, nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("Analytics expected 200, got %d: %s", resp.StatusCode, string(b))
	}
	var ok struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Stats      struct {
			TotalClicks    int64            `json:"total_clicks"`
			RangeClicks    int64            `json:"range_clicks"`
			DailyClicks    map[string]int64 `json:"daily_clicks"`
			ClicksByDevice map[string]int64 `json:"clicks_by_device"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		t.Fatal(err)
	}
	if ok.StatusCode != 200 || ok.Message != "success" {
		t.Errorf("unexpected envelope: %+v", ok)
	}
	if ok.Stats.TotalClicks != 1 || ok.Stats.RangeClicks != 1 || ok.Stats.DailyClicks[today] != 1 {
		t.Errorf("unexpected stats: %+v", ok.Stats)
	}
	if ok.Stats.ClicksByDevice["Desktop"] != 1 {
		t.Errorf("expected one desktop click, got %v", ok.Stats.ClicksByDevice)
	}

	// TEST 5: Historical range from seeded visits
	link, err := repo.GetByShortCode(context.Background(), "abc")
	if err != nil || link == nil {
		t.Fatalf("link lookup: %v", err)
	}
	for _, at := range []string{"2024-01-01T09:00:00Z", "2024-01-01T18:00:00Z", "2024-01-03T12:00:00Z"} {
		ts, _ := time.Parse(time.RFC3339, at)
		if err := repo.RecordVisit(context.Background(), &domain.Visit{LinkID: link.ID, CreatedAt: ts}); err != nil {
			t.Fatal(err)
		}
	}
	resp = do("GET", "/api/v1/analytics?date=2024-01-01&date_end=2024-01-03&shorturl=abc", nil, nil)
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `"daily_clicks":{"2024-01-01":2,"2024-01-02":0,"2024-01-03":1}`) {
		t.Errorf("unexpected daily clicks: %s", raw)
	}
	if !strings.Contains(string(raw), `"range_clicks":3`) || !strings.Contains(string(raw), `"total_clicks":4`) {
		t.Errorf("unexpected totals: %s", raw)
	}

	// TEST 6: Client errors
	badRequests := []struct{ path, msg string }{
		{"/api/v1/analytics?shorturl=abc", "Missing date parameter"},
		{"/api/v1/analytics?date=2024-01-03&date_end=2024-01-01&shorturl=abc", "The date_end parameter cannot be smaller than date"},
		{"/api/v1/analytics?date=2024-01-01&shorturl=zzz", "Not Found"},
		{"/api/v1/analytics?date=2024-01-01", "Missing shorturl parameter"},
		{"/api/v1/analytics?date=01-01-2024&shorturl=abc", "Wrong date format"},
		{"/api/v1/analytics?date=&shorturl=abc", "Wrong date format"},
		{"/api/v1/analytics?date=2024-01-01&date_end=&shorturl=abc", "Wrong date format"},
		{"/api/v1/analytics?date=2024-01-01&shorturl=", "Not Found"},
	}
	for _, tc := range badRequests {
		resp = do("GET", tc.path, nil, nil)
		var got map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest || got["message"] != tc.msg || got["statusCode"] != float64(400) {
			t.Errorf("%s: got %d %v", tc.path, resp.StatusCode, got)
		}
		if _, present := got["stats"]; present {
			t.Errorf("%s: stats must be absent on 400", tc.path)
		}
	}

	// TEST 7: Health & metrics
	resp = do("GET", "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz expected 200, got %d", resp.StatusCode)
	}
	resp = do("GET", "/metrics", nil, nil)
	raw, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `analytics_requests_total{outcome="bad_request"} 8`) {
		t.Errorf("metrics missing analytics outcome counter")
	}
}
