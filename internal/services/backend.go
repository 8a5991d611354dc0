package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/shared"
)

// PinnedSelections retrieves every pinned selection of the authenticated user.
//
// Calls GET /pinned-selections.
func (a *APIService) PinnedSelections(ctx context.Context) ([]models.PinnedSelection, error) {
	var selections []models.PinnedSelection
	if err := a.doRequest(ctx, "pinned_selections.list", http.MethodGet, "/pinned-selections", nil, &selections, nil); err != nil {
		return nil, err
	}
	return selections, nil
}

// DeletePinnedSelection removes the pinned selection of one group type.
//
// Calls DELETE /pinned-selections/{type}.
func (a *APIService) DeletePinnedSelection(ctx context.Context, groupType models.GroupType) error {
	if !groupType.Valid() {
		return fmt.Errorf("%w: group type %q", shared.ErrInvalidArgument, groupType)
	}
	path := "/pinned-selections/" + url.PathEscape(string(groupType))
	return a.doRequest(ctx, "pinned_selections.delete", http.MethodDelete, path, nil, nil, nil)
}

// CreatePinnedSelection writes the pinned selection for p.Type.
//
// Calls POST /pinned-selections with every category of the group as an id list.
func (a *APIService) CreatePinnedSelection(ctx context.Context, p models.PinnedSelection) (*models.PinnedSelection, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: group type %q", shared.ErrInvalidArgument, p.Type)
	}

	body := models.NewPinnedSelection(p.Type, p.Items)
	var created models.PinnedSelection
	if err := a.doRequest(ctx, "pinned_selections.create", http.MethodPost, "/pinned-selections", body, &created, nil); err != nil {
		return nil, err
	}

	if created.Type == "" {
		created.Type = body.Type
		created.Items = body.Items
	}
	return &created, nil
}

// Albums retrieves the user's albums.
//
// Calls GET /albums.
func (a *APIService) Albums(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	if err := a.doRequest(ctx, "albums.list", http.MethodGet, "/albums", nil, &albums, nil); err != nil {
		return nil, err
	}
	return albums, nil
}

// CreateAlbum creates an album from a pinned selection.
//
// Calls POST /albums with req.IdempotencyKey as the Idempotency-Key header. An empty key is
// replaced by a fresh one, which only guards against duplicate delivery of this single call.
func (a *APIService) CreateAlbum(ctx context.Context, req models.AlbumRequest) (*models.Album, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: album name", shared.ErrMissingArgument)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: group type %q", shared.ErrInvalidArgument, req.Type)
	}

	header := http.Header{}
	key := req.IdempotencyKey
	if key == "" {
		key = shared.GenerateID()
	}
	header.Set("Idempotency-Key", key)

	var album models.Album
	if err := a.doRequest(ctx, "albums.create", http.MethodPost, "/albums", req, &album, header); err != nil {
		return nil, err
	}

	if album.Name == "" {
		album.Name = req.Name
	}
	if album.Type == "" {
		album.Type = req.Type
	}
	if album.PinnedSelectionID == "" {
		album.PinnedSelectionID = req.PinnedSelectionID
	}
	return &album, nil
}

// Catalog retrieves the pickable items of one category.
//
// Calls GET /catalog/{category}.
func (a *APIService) Catalog(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category %q", shared.ErrInvalidArgument, category)
	}

	var items []models.CatalogItem
	path := "/catalog/" + url.PathEscape(string(category))
	if err := a.doRequest(ctx, "catalog.list", http.MethodGet, path, nil, &items, nil); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Category == "" {
			items[i].Category = category
		}
	}
	return items, nil
}
