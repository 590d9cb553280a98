package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/useragent"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
)

type AnalyticsService struct {
	validator  *Validator
	aggregator *Aggregator
}

func NewAnalyticsService(validator *Validator, aggregator *Aggregator) *AnalyticsService {
	return &AnalyticsService{
		validator:  validator,
		aggregator: aggregator,
	}
}

// Handle validates req and computes its statistics. Validation failures are
// answered with a 400 response and a nil error; every other failure is
// returned to the caller untouched.
func (s *AnalyticsService) Handle(ctx context.Context, req domain.AnalyticsRequest) (*domain.AnalyticsResponse, error) {
	resolved, err := s.validator.Validate(ctx, req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return &domain.AnalyticsResponse{
				StatusCode: http.StatusBadRequest,
				Message:    verr.Message,
			}, nil
		}
		return nil, err
	}

	stats, err := s.aggregator.Aggregate(ctx, resolved.ShortCode, resolved.DateStart, resolved.DateEnd)
	if err != nil {
		return nil, err
	}

	return &domain.AnalyticsResponse{
		StatusCode: http.StatusOK,
		Message:    "success",
		Stats:      stats,
	}, nil
}

// NewAnalyticsServiceForRepo wires the validator and aggregator over a single
// repository using the default user agent parser.
func NewAnalyticsServiceForRepo(repo ports.LinkRepository, deviceStats bool) *AnalyticsService {
	classifier := useragent.NewClassifier(useragent.NewDefaultParser())
	return NewAnalyticsService(
		NewValidator(repo),
		NewAggregator(repo, classifier, WithDeviceStats(deviceStats)),
	)
}

var (
	_ ports.AnalyticsService = (*AnalyticsService)(nil)
	_ ports.LinkService      = (*LinkService)(nil)
)
