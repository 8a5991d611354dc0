package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/shared"
)

// AlbumLogRepository keeps a local history of albums created from this client.
type AlbumLogRepository struct {
	db *sql.DB
}

// NewAlbumLogRepository creates a new AlbumLogRepository with the given database connection
func NewAlbumLogRepository(db *sql.DB) *AlbumLogRepository {
	return &AlbumLogRepository{db: db}
}

const albumLogColumns = `id, album_id, name, type, pinned_selection_id, item_count, note, created_at`

// Create inserts entry with a generated ID.
func (r *AlbumLogRepository) Create(entry *models.AlbumLogEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	entry.ID = shared.GenerateID()

	query := `INSERT INTO album_log (` + albumLogColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		entry.ID,
		entry.AlbumID,
		entry.Name,
		string(entry.Type),
		entry.PinnedSelectionID,
		entry.ItemCount,
		entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert album log entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by its local ID.
func (r *AlbumLogRepository) Get(id string) (*models.AlbumLogEntry, error) {
	query := `SELECT ` + albumLogColumns + ` FROM album_log WHERE id = ?`
	entry, err := scanAlbumLogEntry(r.db.QueryRow(query, id))
	if err != nil {
		return nil, scanErr(err, shared.ErrAlbumNotFound, id)
	}
	return entry, nil
}

// List returns entries newest first, restricted to groupType unless it is empty.
func (r *AlbumLogRepository) List(groupType models.GroupType) ([]models.AlbumLogEntry, error) {
	query := `SELECT ` + albumLogColumns + ` FROM album_log`
	args := []any{}
	if groupType != "" {
		query += ` WHERE type = ?`
		args = append(args, string(groupType))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query album log: %w", err)
	}
	defer rows.Close()

	entries := []models.AlbumLogEntry{}
	for rows.Next() {
		entry, err := scanAlbumLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album log entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating album log: %w", err)
	}
	return entries, nil
}

// Delete removes an entry by its local ID.
func (r *AlbumLogRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM album_log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete album log entry: %w", err)
	}
	return checkAffected(result, shared.ErrAlbumNotFound, id)
}

func scanAlbumLogEntry(row scanner) (*models.AlbumLogEntry, error) {
	var (
		entry     models.AlbumLogEntry
		groupType string
	)
	err := row.Scan(
		&entry.ID,
		&entry.AlbumID,
		&entry.Name,
		&groupType,
		&entry.PinnedSelectionID,
		&entry.ItemCount,
		&entry.Note,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Type = models.GroupType(groupType)
	return &entry, nil
}
