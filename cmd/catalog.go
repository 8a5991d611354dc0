package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wedx/internal/formatter"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/repositories"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	"github.com/desertthunder/wedx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// cachedCatalog serves catalog items from the local cache and falls back to the backend,
// caching what it fetched.
type cachedCatalog struct {
	repo   *repositories.CatalogRepository
	source services.CatalogSource
	logger *log.Logger
}

func (c *cachedCatalog) Items(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	if c.repo != nil {
		items, err := c.repo.List(category)
		if err != nil {
			c.logger.Warn("catalog cache read failed", "category", category, "error", err)
		} else if len(items) > 0 {
			return items, nil
		}
	}
	return c.fetch(ctx, category)
}

func (c *cachedCatalog) fetch(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	if c.source == nil {
		return nil, fmt.Errorf("%w: catalog source not initialized", shared.ErrServiceUnavailable)
	}

	items, err := c.source.Catalog(ctx, category)
	if err != nil {
		return nil, err
	}

	if c.repo != nil {
		if err := c.repo.ReplaceCategory(category, items); err != nil {
			c.logger.Warn("catalog cache write failed", "category", category, "error", err)
		}
	}
	return items, nil
}

// catalogCache returns the cache-backed catalog. Without a database it goes straight to the backend.
func (r *Runner) catalogCache() *cachedCatalog {
	c := &cachedCatalog{source: r.catalog, logger: r.logger}
	if db, err := r.database(); err != nil {
		r.logger.Warn("catalog cache unavailable", "error", err)
	} else {
		c.repo = repositories.NewCatalogRepository(db)
	}
	return c
}

func parseCategories(values []string) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(values))
	for _, v := range values {
		c, err := models.ParseCategory(v)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// CatalogSync fetches catalog items from the backend into the local cache.
func (r *Runner) CatalogSync(ctx context.Context, cmd *cli.Command) error {
	categories, err := parseCategories(cmd.StringSlice("category"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	engine := r.newEngine(repositories.NewCatalogCacheAdapter(repositories.NewCatalogRepository(db)))

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Debug("catalog sync", "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := engine.SyncCatalog(ctx, progress, tasks.SyncOpts{
		Categories: categories,
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.Backend.RequestsPerSecond,
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Synced %d/%d categories (%d items)", result.Synced, result.TotalCategories, result.TotalItems)
	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("  ✗ %s: %v\n", res.Category, res.Error)
		}
	}
	return nil
}

// CatalogList prints the items of one category.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	category, err := models.ParseCategory(cmd.String("category"))
	if err != nil {
		return err
	}

	catalog := r.catalogCache()
	var items []models.CatalogItem
	if cmd.Bool("refresh") {
		items, err = catalog.fetch(ctx, category)
	} else {
		items, err = catalog.Items(ctx, category)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", category, err)
	}

	switch format := cmd.String("format"); format {
	case "json":
		return r.writeJSON(items, true)
	case "csv":
		data, err := formatter.CatalogToCSV(items)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case "text", "":
		var selected models.Selection
		if r.backend != nil && r.backend.Authenticated() {
			store := r.newStore(nil)
			if err := store.Hydrate(ctx); err != nil {
				r.logger.Warn("could not load selection", "error", err)
			}
			selected = store.Snapshot().Selected
		}
		r.writePlainHeader(category.Label())
		return r.writeBytes(formatter.CatalogToText(items, selected))
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}
