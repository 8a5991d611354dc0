// package tasks implements catalog synchronization and backend dumps.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
)

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains all data fetched from the backend.
type DumpResult struct {
	Health           any              // Health status
	PinnedSelections any              // Pinned selections, one per group type
	Albums           any              // Albums
	Errors           []EndpointResult // Failed endpoint fetches
}

// DumpData is the serialized form of a [DumpResult].
type DumpData struct {
	Health           any      `json:"health"`
	PinnedSelections any      `json:"pinned_selections,omitempty"`
	Albums           any      `json:"albums,omitempty"`
	Errors           []string `json:"errors,omitempty"`
}

// Data converts r into its serializable form.
func (r *DumpResult) Data() DumpData {
	data := DumpData{Health: r.Health, PinnedSelections: r.PinnedSelections, Albums: r.Albums}
	for _, e := range r.Errors {
		data.Errors = append(data.Errors, fmt.Sprintf("%s: %v", e.Endpoint, e.Error))
	}
	return data
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}

// APIClient defines the interface for making raw API requests to the backend.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// CatalogCacher persists the items of a freshly fetched category.
type CatalogCacher interface {
	CacheCategory(category models.Category, items []models.CatalogItem) error
}

// Engine runs catalog syncs and backend dumps.
type Engine struct {
	catalog services.CatalogSource
	api     APIClient
	cacher  CatalogCacher
}

// NewEngine creates a new Engine. Any dependency may be nil; operations needing it fail with [shared.ErrServiceUnavailable].
func NewEngine(catalog services.CatalogSource, api APIClient, cacher CatalogCacher) *Engine {
	return &Engine{catalog: catalog, api: api, cacher: cacher}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Dump fetches the raw backend state.
func (e *Engine) Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{Errors: []EndpointResult{}}

	endpoints := []endpointOperation{
		{name: "health", path: "/health", target: &result.Health, phase: FetchHealth, message: "Fetching health status..."},
		{name: "pinned_selections", path: "/pinned-selections", target: &result.PinnedSelections, phase: FetchPinned, message: "Fetching pinned selections..."},
		{name: "albums", path: "/albums", target: &result.Albums, phase: FetchAlbums, message: "Fetching albums..."},
	}

	totalSteps := len(endpoints)
	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		resp, err := e.api.Get(ctx, endpoint.path)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, EndpointResult{Endpoint: endpoint.path, Error: err})
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode),
			})
		default:
			*endpoint.target = resp.JSONData
		}
	}

	return result, nil
}
