package services

import (
	"context"
	"fmt"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/daterange"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/useragent"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
)

type Aggregator struct {
	store       ports.ClickLogStore
	classifier  *useragent.Classifier
	deviceStats bool
}

type AggregatorOption func(*Aggregator)

// WithDeviceStats toggles the device, browser and platform breakdowns.
func WithDeviceStats(enabled bool) AggregatorOption {
	return func(a *Aggregator) {
		a.deviceStats = enabled
	}
}

func NewAggregator(store ports.ClickLogStore, classifier *useragent.Classifier, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		store:       store,
		classifier:  classifier,
		deviceStats: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate computes the click statistics of shortCode for the inclusive
// range [start, end]. Store and parser failures abort the whole computation.
func (a *Aggregator) Aggregate(ctx context.Context, shortCode, start, end string) (*domain.AnalyticsResult, error) {
	if start == "" {
		return &domain.AnalyticsResult{}, nil
	}
	if end == "" {
		end = start
	}

	days, err := daterange.Expand(start, end)
	if err != nil {
		return nil, fmt.Errorf("expand date range: %w", err)
	}

	total, err := a.store.CountVisits(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}

	perDay, err := a.store.CountVisitsByDay(ctx, shortCode, start+" 00:00:00", end+" 23:59:59")
	if err != nil {
		return nil, fmt.Errorf("count visits by day: %w", err)
	}

	result := &domain.AnalyticsResult{
		TotalClicks: total,
		DailyClicks: make(domain.DailyCounts, 0, len(days)),
	}
	for _, day := range days {
		count := perDay[day]
		result.DailyClicks = append(result.DailyClicks, domain.DailyClick{Date: day, Count: count})
		result.RangeClicks += count
	}

	if !a.deviceStats {
		return result, nil
	}

	rows, err := a.store.ListUserAgents(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("list user agents: %w", err)
	}

	classifications := make([]useragent.Classification, 0, len(rows))
	for _, row := range rows {
		if !row.Valid {
			continue
		}
		c, err := a.classifier.Classify(row.UserAgent)
		if err != nil {
			return nil, err
		}
		classifications = append(classifications, c)
	}

	tallies := useragent.Tally(classifications)
	result.ClicksByDevice = tallies.Device
	result.ClicksByBrowser = tallies.Browser
	result.ClicksByPlatform = tallies.Platform

	return result, nil
}
