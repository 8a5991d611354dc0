package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/shared"
	"golang.org/x/time/rate"
)

// SyncOpts contains configuration for a catalog sync.
type SyncOpts struct {
	Categories []models.Category // Categories to fetch (default: every persisted category)
	NumWorkers int               // Concurrent workers (default: 4, max: 8)
	RateLimit  float64           // Requests per second (default: 5)
}

// CategorySyncResult is the outcome for one category.
type CategorySyncResult struct {
	Category models.Category
	Items    int
	Error    error
}

// SyncResult summarizes a catalog sync.
type SyncResult struct {
	TotalCategories int
	Synced          int
	Failed          int
	TotalItems      int
	Results         []CategorySyncResult
}

// SyncCatalog fetches the catalog of each category and caches it.
//
// Categories are fetched by a worker pool behind a shared rate limiter.
// A category that fails is reported in the result and does not stop the others;
// the returned error is non-nil only when the sync could not start or every category failed.
func (e *Engine) SyncCatalog(ctx context.Context, prog chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog source not initialized", shared.ErrServiceUnavailable)
	}
	if e.cacher == nil {
		return nil, fmt.Errorf("%w: catalog cache not initialized", shared.ErrServiceUnavailable)
	}

	if len(opts.Categories) == 0 {
		for _, c := range models.Categories() {
			if c.Persisted() {
				opts.Categories = append(opts.Categories, c)
			}
		}
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	total := len(opts.Categories)
	result := &SyncResult{
		TotalCategories: total,
		Results:         make([]CategorySyncResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.Category, total)
	results := make(chan CategorySyncResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.syncWorker(ctx, &wg, limiter, jobs, results)
	}

	for i, c := range opts.Categories {
		e.sendProgress(prog, fetchingCatalogUpdate(i+1, total, c))
		jobs <- c
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error == nil {
			result.Synced++
			result.TotalItems += res.Items
			e.sendProgress(prog, categoryCachedUpdate(completed, total, res))
		} else {
			result.Failed++
			e.sendProgress(prog, categoryFailedUpdate(completed, total, res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if total > 0 && result.Synced == 0 {
		return result, fmt.Errorf("%w: no catalog category could be synced", shared.ErrAPIRequest)
	}
	return result, nil
}

// syncWorker fetches and caches categories from the jobs channel.
func (e *Engine) syncWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan models.Category,
	results chan<- CategorySyncResult,
) {
	defer wg.Done()

	for c := range jobs {
		results <- e.syncCategory(ctx, limiter, c)
	}
}

func (e *Engine) syncCategory(ctx context.Context, limiter *rate.Limiter, c models.Category) CategorySyncResult {
	res := CategorySyncResult{Category: c}

	if err := limiter.Wait(ctx); err != nil {
		res.Error = err
		return res
	}

	items, err := e.catalog.Catalog(ctx, c)
	if err != nil {
		res.Error = fmt.Errorf("failed to fetch catalog: %w", err)
		return res
	}

	if err := e.cacher.CacheCategory(c, items); err != nil {
		res.Error = err
		return res
	}

	res.Items = len(items)
	return res
}
