package tasks

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	tu "github.com/desertthunder/wedx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPIClient struct {
	responses map[string]*services.APIResponse
	errs      map[string]error
}

func (m *mockAPIClient) Get(ctx context.Context, path string) (*services.APIResponse, error) {
	if err, ok := m.errs[path]; ok {
		return nil, err
	}
	if resp, ok := m.responses[path]; ok {
		return resp, nil
	}
	return &services.APIResponse{StatusCode: http.StatusNotFound}, nil
}

type mockCacher struct {
	mu     sync.Mutex
	cached map[models.Category][]models.CatalogItem
	err    error
}

func (m *mockCacher) CacheCategory(c models.Category, items []models.CatalogItem) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached == nil {
		m.cached = make(map[models.Category][]models.CatalogItem)
	}
	m.cached[c] = items
	return nil
}

func TestEngine_SyncCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := func() *tu.FakeCatalog {
		return &tu.FakeCatalog{Items: map[models.Category][]models.CatalogItem{
			models.Veils:  {{ID: "v1", Name: "Cathedral"}, {ID: "v2", Name: "Chapel"}},
			models.Crowns: {{ID: "c1", Name: "Tiara"}},
		}}
	}

	t.Run("caches every requested category", func(t *testing.T) {
		cacher := &mockCacher{}
		engine := NewEngine(catalog(), nil, cacher)

		result, err := engine.SyncCatalog(ctx, nil, SyncOpts{
			Categories: []models.Category{models.Veils, models.Crowns, models.GroomLapel},
			RateLimit:  1000,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalCategories)
		assert.Equal(t, 3, result.Synced)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, 3, result.TotalItems)
		assert.Len(t, cacher.cached[models.Veils], 2)
		assert.Len(t, cacher.cached[models.Crowns], 1)
		assert.Contains(t, cacher.cached, models.GroomLapel)
	})

	t.Run("defaults to persisted categories", func(t *testing.T) {
		src := catalog()
		engine := NewEngine(src, nil, &mockCacher{})

		result, err := engine.SyncCatalog(ctx, nil, SyncOpts{RateLimit: 1000})
		require.NoError(t, err)
		assert.Equal(t, len(models.Categories())-1, result.TotalCategories)
		assert.Equal(t, result.TotalCategories, src.Hits())
		for _, r := range result.Results {
			assert.NotEqual(t, models.Colors, r.Category)
		}
	})

	t.Run("partial failures are reported", func(t *testing.T) {
		src := catalog()
		src.Fail = map[models.Category]bool{models.Crowns: true}
		engine := NewEngine(src, nil, &mockCacher{})

		result, err := engine.SyncCatalog(ctx, nil, SyncOpts{
			Categories: []models.Category{models.Veils, models.Crowns},
			RateLimit:  1000,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Synced)
		assert.Equal(t, 1, result.Failed)
		for _, r := range result.Results {
			if r.Category == models.Crowns {
				assert.Error(t, r.Error)
			}
		}
	})

	t.Run("all failures return an error", func(t *testing.T) {
		engine := NewEngine(catalog(), nil, &mockCacher{err: errors.New("disk full")})

		result, err := engine.SyncCatalog(ctx, nil, SyncOpts{Categories: []models.Category{models.Veils}, RateLimit: 1000})
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		require.NotNil(t, result)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewEngine(nil, nil, &mockCacher{}).SyncCatalog(ctx, nil, SyncOpts{})
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)

		_, err = NewEngine(catalog(), nil, nil).SyncCatalog(ctx, nil, SyncOpts{})
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := NewEngine(catalog(), nil, &mockCacher{}).SyncCatalog(cctx, nil, SyncOpts{
			Categories: []models.Category{models.Veils, models.Crowns},
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, result.Failed)
	})

	t.Run("progress updates", func(t *testing.T) {
		prog := make(chan ProgressUpdate, 16)
		engine := NewEngine(catalog(), nil, &mockCacher{})

		_, err := engine.SyncCatalog(ctx, prog, SyncOpts{Categories: []models.Category{models.Veils, models.Crowns}, RateLimit: 1000})
		require.NoError(t, err)
		close(prog)

		phases := map[Phase]int{}
		for u := range prog {
			phases[u.Phase]++
		}
		assert.Equal(t, 2, phases[FetchCatalog])
		assert.Equal(t, 2, phases[CacheCatalog])
	})
}

func TestEngine_Dump(t *testing.T) {
	ctx := context.Background()

	t.Run("collects endpoints", func(t *testing.T) {
		api := &mockAPIClient{responses: map[string]*services.APIResponse{
			"/health":            {StatusCode: 200, JSONData: map[string]any{"status": "ok"}},
			"/pinned-selections": {StatusCode: 200, JSONData: []any{}},
			"/albums":            {StatusCode: 200, JSONData: []any{map[string]any{"id": "a1"}}},
		}}
		result, err := NewEngine(nil, api, nil).Dump(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Errors)
		assert.Equal(t, map[string]any{"status": "ok"}, result.Health)
		assert.Len(t, result.Albums, 1)
	})

	t.Run("records failed endpoints", func(t *testing.T) {
		api := &mockAPIClient{
			responses: map[string]*services.APIResponse{"/health": {StatusCode: 200}},
			errs:      map[string]error{"/albums": errors.New("connection refused")},
		}
		result, err := NewEngine(nil, api, nil).Dump(ctx, nil)
		require.NoError(t, err)
		require.Len(t, result.Errors, 2)

		data := result.Data()
		assert.Len(t, data.Errors, 2)
		assert.Contains(t, data.Errors[0], "/pinned-selections")
		assert.Contains(t, data.Errors[1], "connection refused")
	})

	t.Run("nil client", func(t *testing.T) {
		_, err := NewEngine(nil, nil, nil).Dump(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	engine := NewEngine(nil, nil, nil)
	prog := make(chan ProgressUpdate)
	engine.sendProgress(prog, ProgressUpdate{Phase: FetchHealth})
	engine.sendProgress(nil, ProgressUpdate{Phase: FetchHealth})
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "fetch_catalog", FetchCatalog.String())
	assert.Equal(t, "", Phase(42).String())
}
