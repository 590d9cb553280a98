package services

import (
	"context"
	"fmt"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/daterange"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
)

// Client-facing validation messages
const (
	MsgMissingDate     = "Missing date parameter"
	MsgWrongDateFormat = "Wrong date format"
	MsgInvalidRange    = "The date_end parameter cannot be smaller than date"
	MsgMissingShortURL = "Missing shorturl parameter"
	MsgNotFound        = "Not Found"
)

type Validator struct {
	links ports.LinkRegistry
}

func NewValidator(links ports.LinkRegistry) *Validator {
	return &Validator{links: links}
}

// Validate checks req and returns it with DateEnd resolved. Rejections are
// *domain.ValidationError; any other error comes from the link registry.
// A parameter sent with an empty value is present, not missing.
func (v *Validator) Validate(ctx context.Context, req domain.AnalyticsRequest) (domain.AnalyticsRequest, error) {
	if !req.Has(domain.ParamDate) {
		return req, domain.NewValidationError(domain.MissingParameter, MsgMissingDate)
	}
	if !req.Has(domain.ParamDateEnd) {
		req.DateEnd = req.DateStart
		req.Supplied |= domain.ParamDateEnd
	}

	if !daterange.Valid(req.DateStart) || !daterange.Valid(req.DateEnd) {
		return req, domain.NewValidationError(domain.MalformedDate, MsgWrongDateFormat)
	}

	// Fixed-width ISO dates compare correctly as strings.
	if req.DateEnd < req.DateStart {
		return req, domain.NewValidationError(domain.InvalidRange, MsgInvalidRange)
	}

	if !req.Has(domain.ParamShortURL) {
		return req, domain.NewValidationError(domain.MissingParameter, MsgMissingShortURL)
	}
	if req.ShortCode == "" {
		return req, domain.NewValidationError(domain.NotFound, MsgNotFound)
	}

	link, err := v.links.GetByShortCode(ctx, req.ShortCode)
	if err != nil {
		return req, fmt.Errorf("lookup short code %q: %w", req.ShortCode, err)
	}
	if link == nil {
		return req, domain.NewValidationError(domain.NotFound, MsgNotFound)
	}

	return req, nil
}
