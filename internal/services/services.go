// package services defines the backend interfaces consumed by the selection store and the CLI
package services

import (
	"context"

	"github.com/desertthunder/wedx/internal/models"
)

// Backend is the set of logical backend operations the selection store depends on.
type Backend interface {
	// Authenticated reports whether a client-side auth token is available.
	Authenticated() bool

	// PinnedSelections lists the user's pinned selections, at most one per group type.
	PinnedSelections(ctx context.Context) ([]models.PinnedSelection, error)

	// DeletePinnedSelection removes the pinned selection for the group type.
	// Deleting a missing selection yields an error for which [IsNotFound] is true.
	DeletePinnedSelection(ctx context.Context, groupType models.GroupType) error

	// CreatePinnedSelection creates (or overwrites) the pinned selection for p.Type.
	CreatePinnedSelection(ctx context.Context, p models.PinnedSelection) (*models.PinnedSelection, error)

	// Albums lists the user's albums.
	Albums(ctx context.Context) ([]models.Album, error)

	// CreateAlbum finalizes a pinned selection into a permanent album.
	CreateAlbum(ctx context.Context, req models.AlbumRequest) (*models.Album, error)
}

// CatalogSource fetches pickable items for a category.
type CatalogSource interface {
	Catalog(ctx context.Context, category models.Category) ([]models.CatalogItem, error)
}

var (
	_ Backend       = (*APIService)(nil)
	_ CatalogSource = (*APIService)(nil)
)
