package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/repositories"
)

const (
	DefaultPostLimit         = 10
	DefaultFollowLimit       = 20
	DefaultConversationLimit = 50
	DefaultNotificationLimit = 20
	MaxPageLimit             = 100

	// MaxPage keeps (Page-1)*Limit plus one page inside int
	MaxPage = math.MaxInt/MaxPageLimit - 1
)

// Pagination is a 1-based offset page request
type Pagination struct {
	Page  int
	Limit int
}

// normalize fills defaults and clamps out-of-range values
func (p Pagination) normalize(defaultLimit int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Pagination) offset() int { return (p.Page - 1) * p.Limit }

func (p Pagination) describe(returned int, total int64) models.Page {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return models.Page{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		Total:       total,
		HasMore:     int64(p.offset()+returned) < total,
	}
}

// slice returns the page window of an in-memory ordered set
func sliceWindow[T any](items []T, p Pagination) []T {
	start := p.offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// mapNotFound replaces a repository miss with the engine sentinel
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return sentinel
	}
	return err
}

// storeError wraps an unexpected repository failure. It surfaces as an internal error.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
