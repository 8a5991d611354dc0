package tasks

import (
	"fmt"

	"github.com/desertthunder/wedx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchHealth Phase = iota
	FetchPinned
	FetchAlbums
	FetchCatalog
	CacheCatalog
)

func (p Phase) String() string {
	switch p {
	case FetchHealth:
		return "fetch_health"
	case FetchPinned:
		return "fetch_pinned"
	case FetchAlbums:
		return "fetch_albums"
	case FetchCatalog:
		return "fetch_catalog"
	case CacheCatalog:
		return "cache_catalog"
	default:
		return ""
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func fetchingCatalogUpdate(step, total int, c models.Category) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, c.Label()),
	}
}

func categoryCachedUpdate(step, total int, res CategorySyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d items)", step, total, res.Category.Label(), res.Items),
		Data:    res,
	}
}

func categoryFailedUpdate(step, total int, res CategorySyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Category.Label(), res.Error),
		Data:    res,
	}
}
