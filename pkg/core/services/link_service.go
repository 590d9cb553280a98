package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/ports"
)

var (
	ErrLinkNotFound    = errors.New("link not found")
	ErrCodeTaken       = errors.New("custom code already exists")
	ErrMissingOriginal = errors.New("original URL is required")
)

type LinkService struct {
	repo ports.LinkRepository
	now  func() time.Time
}

func NewLinkService(repo ports.LinkRepository) *LinkService {
	return &LinkService{repo: repo, now: time.Now}
}

func (s *LinkService) Shorten(ctx context.Context, originalURL, title, customCode string) (*domain.Link, error) {
	if originalURL == "" {
		return nil, ErrMissingOriginal
	}

	code := customCode
	if code == "" {
		var err error
		code, err = generateShortCode(6)
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.repo.GetByShortCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrCodeTaken
		}
	}

	now := s.now().UTC()
	link := &domain.Link{
		OriginalURL: originalURL,
		ShortCode:   code,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *LinkService) GetOriginalURL(ctx context.Context, code string) (string, error) {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", ErrLinkNotFound
	}
	return link.OriginalURL, nil
}

// RecordVisit appends a visit to the click log of shortCode.
func (s *LinkService) RecordVisit(ctx context.Context, shortCode, referer, userAgent, ip string) error {
	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrLinkNotFound
	}

	visit := &domain.Visit{
		LinkID:    link.ID,
		Referer:   referer,
		UserAgent: userAgent,
		IPHash:    hashIP(ip),
		CreatedAt: s.now().UTC(),
	}

	return s.repo.RecordVisit(ctx, visit)
}

func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateShortCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
