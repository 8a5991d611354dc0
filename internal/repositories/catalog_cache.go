package repositories

import (
	"fmt"

	"github.com/desertthunder/wedx/internal/models"
)

// CatalogCacheAdapter implements tasks.CatalogCacher using CatalogRepository.
//
// Each synced category replaces the cached rows of that category.
type CatalogCacheAdapter struct {
	repo *CatalogRepository
}

// NewCatalogCacheAdapter creates a new CatalogCacheAdapter with the given repository
func NewCatalogCacheAdapter(repo *CatalogRepository) *CatalogCacheAdapter {
	return &CatalogCacheAdapter{repo: repo}
}

// CacheCategory stores the freshly fetched items of category.
func (a *CatalogCacheAdapter) CacheCategory(category models.Category, items []models.CatalogItem) error {
	if err := a.repo.ReplaceCategory(category, items); err != nil {
		return fmt.Errorf("failed to cache %s: %w", category, err)
	}
	return nil
}
