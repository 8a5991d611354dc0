package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/wedx/internal/formatter"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/repositories"
	"github.com/desertthunder/wedx/internal/selection"
	"github.com/desertthunder/wedx/internal/shared"
	"github.com/urfave/cli/v3"
)

// recordAlbum writes a successful album creation to the local album log. Failures are only logged.
func (r *Runner) recordAlbum(album *models.Album, itemCount int) {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("album log unavailable", "error", err)
		return
	}
	entry := models.NewAlbumLogEntry(*album, itemCount)
	if err := repositories.NewAlbumLogRepository(db).Create(entry); err != nil {
		r.logger.Warn("failed to record album", "album", album.ID, "error", err)
	}
}

// AlbumCreate turns the pinned selection of a group into an album.
func (r *Runner) AlbumCreate(ctx context.Context, cmd *cli.Command) error {
	value := cmd.StringArg("group")
	if value == "" {
		return fmt.Errorf("%w: group type", shared.ErrMissingArgument)
	}
	groupType, err := models.ParseGroupType(value)
	if err != nil {
		return err
	}

	var album *models.Album
	var count int
	err = r.withStore(ctx, func(s *selection.Store) error {
		count = s.Snapshot().Selected.ForGroup(groupType).Total()
		created, err := s.CreateAlbum(ctx, groupType)
		album = created
		return err
	})
	if err != nil {
		return err
	}

	r.recordAlbum(album, count)
	r.writePlain("✓ Album created: %s\n", album.Name)
	r.writePlain("  ID: %s\n", album.ID)
	r.writePlain("  Items: %d\n", count)
	return nil
}

// AlbumList prints the albums stored on the backend.
func (r *Runner) AlbumList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	albums, err := r.backend.Albums(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var data []byte
	switch format := cmd.String("format"); format {
	case "json":
		data, err = json.MarshalIndent(albums, "", "  ")
		data = append(data, '\n')
	case "csv":
		data, err = formatter.AlbumsToCSV(albums)
	case "text", "":
		data = formatter.AlbumsToText(albums)
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(data, path)
		if err != nil {
			return err
		}
		r.logger.Info("albums exported", "path", written, "count", len(albums))
		return r.writePlain("✓ %d albums written to %s\n", len(albums), written)
	}
	return r.writeBytes(data)
}

// AlbumHistory prints the local log of albums created from this machine.
func (r *Runner) AlbumHistory(ctx context.Context, cmd *cli.Command) error {
	var groupType models.GroupType
	if value := cmd.String("group"); value != "" {
		g, err := models.ParseGroupType(value)
		if err != nil {
			return err
		}
		groupType = g
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	entries, err := repositories.NewAlbumLogRepository(db).List(groupType)
	if err != nil {
		return err
	}

	switch format := cmd.String("format"); format {
	case "json":
		return r.writeJSON(entries, true)
	case "csv":
		data, err := formatter.AlbumLogToCSV(entries)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case "text", "":
		return r.writeBytes(formatter.AlbumLogToText(entries))
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}
