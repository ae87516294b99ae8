package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"merapaper/internal/domain"
	"merapaper/internal/news"
	"merapaper/internal/repository"
)

const defaultArticleLimit = 10

// NewsService validates facets at the boundary and delegates to the provider.
type NewsService struct {
	provider news.Provider
	users    repository.UserRepository
}

func NewNewsService(provider news.Provider, users repository.UserRepository) *NewsService {
	return &NewsService{provider: provider, users: users}
}

// FetchByFacets rejects any supplied facet outside the allow-lists and
// substitutes defaults for omitted ones.
func (s *NewsService) FetchByFacets(ctx context.Context, category, country string, limit int) ([]domain.Article, error) {
	if category != "" && !domain.IsValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if country != "" && !domain.IsValidCountry(country) {
		return nil, fmt.Errorf("%w: unknown country %q", ErrValidation, country)
	}
	if category == "" {
		category = domain.DefaultCategory
	}
	if country == "" {
		country = domain.DefaultCountry
	}
	if limit <= 0 {
		limit = defaultArticleLimit
	}
	return s.provider.Fetch(ctx, category, country, limit)
}

// FetchForUser resolves stored preferences, falling back to defaults when a
// preference is absent or no longer in the allow-list.
func (s *NewsService) FetchForUser(ctx context.Context, userID string) ([]domain.Article, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	category := user.Category
	if !domain.IsValidCategory(category) {
		category = domain.DefaultCategory
	}
	country := user.Country
	if !domain.IsValidCountry(country) {
		country = domain.DefaultCountry
	}
	return s.provider.Fetch(ctx, category, country, defaultArticleLimit)
}
