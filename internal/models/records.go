package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PinnedSelection is the backend's single overwritable draft record for one group type.
//
// On the wire each category is a flat id list under its [Category.WireKey]:
//
//	{"id": "...", "type": "wedding-dress", "veilIds": ["v1"], "jewelryIds": ["j1"], ...}
type PinnedSelection struct {
	ID        string
	Type      GroupType
	Items     Selection
	CreatedAt time.Time
}

// NewPinnedSelection builds the record for g from the draft s, deduplicating every id list.
func NewPinnedSelection(g GroupType, s Selection) PinnedSelection {
	return PinnedSelection{Type: g, Items: s.ForGroup(g)}
}

// MarshalJSON writes every category of the record's group, empty ones as [].
func (p PinnedSelection) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": p.Type}
	if p.ID != "" {
		out["id"] = p.ID
	}
	if !p.CreatedAt.IsZero() {
		out["createdAt"] = p.CreatedAt
	}
	for _, c := range p.Type.Categories() {
		out[c.WireKey()] = p.Items.IDs(c)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the id lists of every category owned by the record's type.
// Unknown fields are ignored. A record without a type carries no items.
func (p *PinnedSelection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var head struct {
		ID        string    `json:"id"`
		Type      GroupType `json:"type"`
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Type != "" && !head.Type.Valid() {
		return fmt.Errorf("pinned selection %q: unknown type %q", head.ID, head.Type)
	}

	items := make(Selection)
	for _, c := range head.Type.Categories() {
		field, ok := raw[c.WireKey()]
		if !ok || string(field) == "null" {
			items[c] = []string{}
			continue
		}
		var ids []string
		if err := json.Unmarshal(field, &ids); err != nil {
			return fmt.Errorf("pinned selection %q: field %s: %w", head.ID, c.WireKey(), err)
		}
		items[c] = Dedup(ids)
	}

	*p = PinnedSelection{ID: head.ID, Type: head.Type, Items: items, CreatedAt: head.CreatedAt}
	return nil
}

// Album is a permanent, named snapshot of a pinned selection.
type Album struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Note              string    `json:"note,omitempty"`
	Type              GroupType `json:"type"`
	PinnedSelectionID string    `json:"pinnedSelectionId,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitzero"`
}

// AlbumRequest is the body of an album creation call.
type AlbumRequest struct {
	Name              string    `json:"name"`
	Note              string    `json:"note"`
	Type              GroupType `json:"type"`
	PinnedSelectionID string    `json:"pinnedSelectionId,omitempty"`
	// IdempotencyKey is sent as a header, not in the body. Resending a request with the same key
	// lets the backend drop the duplicate.
	IdempotencyKey string `json:"-"`
}

// CatalogItem is a pickable item of one category.
type CatalogItem struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Price     int64     `json:"price,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// AlbumLogEntry is the local record of an album created from this client.
type AlbumLogEntry struct {
	ID                string    `json:"id"`
	AlbumID           string    `json:"albumId"`
	Name              string    `json:"name"`
	Type              GroupType `json:"type"`
	PinnedSelectionID string    `json:"pinnedSelectionId,omitempty"`
	ItemCount         int       `json:"itemCount"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewAlbumLogEntry records album with the number of items it was built from.
// A zero CreatedAt on the album is replaced with the current time.
func NewAlbumLogEntry(album Album, itemCount int) *AlbumLogEntry {
	created := album.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &AlbumLogEntry{
		AlbumID:           album.ID,
		Name:              album.Name,
		Type:              album.Type,
		PinnedSelectionID: album.PinnedSelectionID,
		ItemCount:         itemCount,
		Note:              album.Note,
		CreatedAt:         created,
	}
}

// Validate checks the fields required by the album log.
func (e *AlbumLogEntry) Validate() error {
	if e.AlbumID == "" {
		return fmt.Errorf("album id is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("invalid album type %q", e.Type)
	}
	return nil
}

// Validate checks the fields required to cache an item.
func (i *CatalogItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("catalog item id is required")
	}
	if !i.Category.Valid() {
		return fmt.Errorf("invalid catalog category %q", i.Category)
	}
	return nil
}
