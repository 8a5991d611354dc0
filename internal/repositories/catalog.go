package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/shared"
)

// CatalogRepository caches catalog items fetched from the backend.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the given database connection
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = `id, category, name, image_url, price, updated_at`

// Upsert inserts item or overwrites the cached row with the same category and id.
func (r *CatalogRepository) Upsert(item *models.CatalogItem) error {
	return upsertItem(r.db, item, time.Now().UTC())
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertItem(db execer, item *models.CatalogItem, syncedAt time.Time) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	updated := item.UpdatedAt
	if updated.IsZero() {
		updated = syncedAt
	}

	query := `
		INSERT INTO catalog_items (id, category, name, image_url, price, updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (category, id) DO UPDATE SET
			name = excluded.name,
			image_url = excluded.image_url,
			price = excluded.price,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at
	`
	_, err := db.Exec(query, item.ID, string(item.Category), item.Name, item.ImageURL, item.Price, updated, syncedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog item: %w", err)
	}
	return nil
}

// ReplaceCategory swaps the cached items of category for items in one transaction.
func (r *CatalogRepository) ReplaceCategory(category models.Category, items []models.CatalogItem) error {
	if !category.Valid() {
		return fmt.Errorf("%w: category %q", shared.ErrInvalidArgument, category)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM catalog_items WHERE category = ?`, string(category)); err != nil {
		return fmt.Errorf("failed to clear category %s: %w", category, err)
	}

	now := time.Now().UTC()
	for i := range items {
		item := items[i]
		if item.Category == "" {
			item.Category = category
		}
		if item.Category != category {
			return fmt.Errorf("%w: item %s belongs to %s, not %s", shared.ErrInvalidArgument, item.ID, item.Category, category)
		}
		if err := upsertItem(tx, &item, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog transaction: %w", err)
	}
	return nil
}

// Get retrieves one cached item.
func (r *CatalogRepository) Get(category models.Category, id string) (*models.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE category = ? AND id = ?`
	item, err := scanCatalogItem(r.db.QueryRow(query, string(category), id))
	if err != nil {
		return nil, scanErr(err, shared.ErrItemNotFound, fmt.Sprintf("%s/%s", category, id))
	}
	return item, nil
}

// List returns the cached items of category ordered by name.
func (r *CatalogRepository) List(category models.Category) ([]models.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE category = ? ORDER BY name, id`
	rows, err := r.db.Query(query, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog items: %w", err)
	}
	return items, nil
}

// Delete removes one cached item.
func (r *CatalogRepository) Delete(category models.Category, id string) error {
	result, err := r.db.Exec(`DELETE FROM catalog_items WHERE category = ? AND id = ?`, string(category), id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}
	return checkAffected(result, shared.ErrItemNotFound, fmt.Sprintf("%s/%s", category, id))
}

// Count returns the number of cached items in category, or in every category when category is empty.
func (r *CatalogRepository) Count(category models.Category) (int, error) {
	var (
		n   int
		err error
	)
	if category == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM catalog_items`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM catalog_items WHERE category = ?`, string(category)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count catalog items: %w", err)
	}
	return n, nil
}

func scanCatalogItem(row scanner) (*models.CatalogItem, error) {
	var (
		item     models.CatalogItem
		category string
	)
	if err := row.Scan(&item.ID, &category, &item.Name, &item.ImageURL, &item.Price, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Category = models.Category(category)
	return &item, nil
}
