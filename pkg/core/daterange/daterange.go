// Package daterange expands a pair of calendar dates into the days between them.
package daterange

import (
	"errors"
	"fmt"
	"time"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
)

var ErrInvalidRange = errors.New("end date is before start date")

// Parse reads a YYYY-MM-DD date. The input must round trip exactly, so
// values like "2024-02-30" or "2024-1-5" are rejected.
func Parse(value string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(domain.DateLayout) != value {
		return time.Time{}, fmt.Errorf("date %q is not in %s format", value, domain.DateLayout)
	}
	return t, nil
}

// Valid reports whether value is a YYYY-MM-DD calendar date.
func Valid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Expand returns every day from start to end, both included, in order.
func Expand(start, end string) ([]string, error) {
	from, err := Parse(start)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	to, err := Parse(end)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	days := make([]string, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(domain.DateLayout))
	}
	return days, nil
}
