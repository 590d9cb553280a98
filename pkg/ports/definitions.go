package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
)

// LinkRegistry resolves short codes to links. GetByShortCode returns nil, nil
// when the code does not exist.
type LinkRegistry interface {
	GetByShortCode(ctx context.Context, code string) (*domain.Link, error)
}

// ClickLogStore is the read side of the visit log
type ClickLogStore interface {
	// CountVisits counts every visit of the short code, regardless of date.
	CountVisits(ctx context.Context, shortCode string) (int64, error)
	// CountVisitsByDay counts visits between from and to (inclusive,
	// "YYYY-MM-DD HH:MM:SS") grouped by YYYY-MM-DD.
	CountVisitsByDay(ctx context.Context, shortCode, from, to string) (map[string]int64, error)
	// ListUserAgents returns the user agent of every visit of the short code.
	ListUserAgents(ctx context.Context, shortCode string) ([]domain.UserAgentRow, error)
}

// LinkRepository defines storage operations for links and visits
type LinkRepository interface {
	LinkRegistry
	ClickLogStore

	Create(ctx context.Context, link *domain.Link) error
	Dump(ctx context.Context) ([]domain.Link, error) // For migration
	RecordVisit(ctx context.Context, visit *domain.Visit) error
}

// LinkService defines the host operations around short links
type LinkService interface {
	Shorten(ctx context.Context, originalURL, title, customCode string) (*domain.Link, error)
	GetOriginalURL(ctx context.Context, code string) (string, error)
	RecordVisit(ctx context.Context, shortCode, referer, userAgent, ip string) error
}

// AnalyticsService answers click analytics requests. Client mistakes come
// back as a 400 response; a non-nil error is always a system failure.
type AnalyticsService interface {
	Handle(ctx context.Context, req domain.AnalyticsRequest) (*domain.AnalyticsResponse, error)
}
