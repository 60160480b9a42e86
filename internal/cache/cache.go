package cache

import (
	"context"
	"time"

	"silosremeco/backend/internal/domain"
)

// CatalogCache memoizes the sorted item listing of a category.
type CatalogCache interface {
	Get(ctx context.Context, category domain.Category) ([]domain.CatalogItem, bool, error)
	Set(ctx context.Context, category domain.Category, items []domain.CatalogItem, ttl time.Duration) error
}

type NoopCatalogCache struct{}

func (NoopCatalogCache) Get(_ context.Context, _ domain.Category) ([]domain.CatalogItem, bool, error) {
	return nil, false, nil
}

func (NoopCatalogCache) Set(_ context.Context, _ domain.Category, _ []domain.CatalogItem, _ time.Duration) error {
	return nil
}

func catalogKey(category domain.Category) string {
	return "silos:catalog:" + string(category)
}
