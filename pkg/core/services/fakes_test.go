package services

import (
	"context"
	"strings"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
)

// memoryRepo is an in-memory ports.LinkRepository for service tests.
type memoryRepo struct {
	links  map[string]*domain.Link
	visits []visitRow

	lookupErr     error
	countErr      error
	countByDayErr error
	agentsErr     error

	lastFrom, lastTo string
	lastVisit        *domain.Visit
}

type visitRow struct {
	code      string
	createdAt string // "YYYY-MM-DD HH:MM:SS"
	userAgent domain.UserAgentRow
}

func newMemoryRepo(codes ...string) *memoryRepo {
	r := &memoryRepo{links: make(map[string]*domain.Link)}
	for i, code := range codes {
		r.links[code] = &domain.Link{ID: int64(i + 1), ShortCode: code, OriginalURL: "https://example.com/" + code}
	}
	return r
}

func (r *memoryRepo) click(code, createdAt, userAgent string) {
	r.visits = append(r.visits, visitRow{
		code:      code,
		createdAt: createdAt,
		userAgent: domain.UserAgentRow{UserAgent: userAgent, Valid: true},
	})
}

func (r *memoryRepo) clickWithoutAgent(code, createdAt string) {
	r.visits = append(r.visits, visitRow{code: code, createdAt: createdAt})
}

func (r *memoryRepo) GetByShortCode(_ context.Context, code string) (*domain.Link, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	return r.links[code], nil
}

func (r *memoryRepo) CountVisits(_ context.Context, shortCode string) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, v := range r.visits {
		if v.code == shortCode {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) CountVisitsByDay(_ context.Context, shortCode, from, to string) (map[string]int64, error) {
	if r.countByDayErr != nil {
		return nil, r.countByDayErr
	}
	r.lastFrom, r.lastTo = from, to
	out := make(map[string]int64)
	for _, v := range r.visits {
		if v.code != shortCode || v.createdAt < from || v.createdAt > to {
			continue
		}
		day, _, _ := strings.Cut(v.createdAt, " ")
		out[day]++
	}
	return out, nil
}

func (r *memoryRepo) ListUserAgents(_ context.Context, shortCode string) ([]domain.UserAgentRow, error) {
	if r.agentsErr != nil {
		return nil, r.agentsErr
	}
	var out []domain.UserAgentRow
	for _, v := range r.visits {
		if v.code == shortCode {
			out = append(out, v.userAgent)
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(_ context.Context, link *domain.Link) error {
	link.ID = int64(len(r.links) + 1)
	r.links[link.ShortCode] = link
	return nil
}

func (r *memoryRepo) Dump(_ context.Context) ([]domain.Link, error) {
	var out []domain.Link
	for _, l := range r.links {
		out = append(out, *l)
	}
	return out, nil
}

func (r *memoryRepo) RecordVisit(_ context.Context, visit *domain.Visit) error {
	r.lastVisit = visit
	for code, l := range r.links {
		if l.ID == visit.LinkID {
			r.visits = append(r.visits, visitRow{
				code:      code,
				createdAt: visit.CreatedAt.Format("2006-01-02 15:04:05"),
				userAgent: domain.UserAgentRow{UserAgent: visit.UserAgent, Valid: true},
			})
		}
	}
	return nil
}
