package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/wedx/internal/formatter"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/repositories"
	"github.com/desertthunder/wedx/internal/selection"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	"github.com/urfave/cli/v3"
)

// selectionView is the JSON form of `selection show`.
type selectionView struct {
	Selected             models.Selection `json:"selected"`
	HasExistingSelection bool             `json:"hasExistingSelection"`
}

// withStore hydrates a fresh store, runs fn and flushes whatever fn changed before returning.
func (r *Runner) withStore(ctx context.Context, fn func(*selection.Store) error) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	store := r.newStore(nil)
	if err := store.Hydrate(ctx); err != nil {
		return err
	}

	err := fn(store)
	if cerr := store.Close(ctx); cerr != nil {
		err = errors.Join(err, fmt.Errorf("failed to save selection: %w", cerr))
	}
	return err
}

// groupsArg resolves the --group flag, defaulting to every group type.
func groupsArg(value string) ([]models.GroupType, error) {
	if value == "" {
		return models.Groups(), nil
	}
	g, err := models.ParseGroupType(value)
	if err != nil {
		return nil, err
	}
	return []models.GroupType{g}, nil
}

// names resolves item names from the catalog cache. Missing entries fall back to ids.
func (r *Runner) names() formatter.Names {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("catalog cache unavailable, showing ids", "error", err)
		return nil
	}
	repo := repositories.NewCatalogRepository(db)

	var items []models.CatalogItem
	for _, c := range models.Categories() {
		cached, err := repo.List(c)
		if err != nil {
			r.logger.Warn("catalog cache read failed", "category", c, "error", err)
			continue
		}
		items = append(items, cached...)
	}
	return formatter.NamesFromItems(items)
}

// SelectionShow prints the pinned selections as a draft.
func (r *Runner) SelectionShow(ctx context.Context, cmd *cli.Command) error {
	var state selection.State
	if err := r.withStore(ctx, func(s *selection.Store) error {
		state = s.Snapshot()
		return nil
	}); err != nil {
		return err
	}

	var names formatter.Names
	if cmd.Bool("names") {
		names = r.names()
	}

	switch format := cmd.String("format"); format {
	case "json":
		return r.writeJSON(selectionView{
			Selected:             state.Selected,
			HasExistingSelection: state.HasExistingSelection,
		}, true)
	case "markdown", "md":
		return r.writeBytes(formatter.SelectionToMarkdown(state.Selected, names))
	case "text", "":
		return r.writeBytes(formatter.SelectionToText(state.Selected, names))
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}

// SelectionToggle flips one or more ids of a category and saves the owning group.
//
// Usage: wedx selection toggle <category> <id> [id...]
func (r *Runner) SelectionToggle(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: category and at least one id", shared.ErrMissingArgument)
	}

	category, err := models.ParseCategory(args.First())
	if err != nil {
		return err
	}
	group, grouped := category.Group()
	if !grouped {
		r.logger.Warn("category is kept locally and is not saved", "category", category)
	}

	return r.withStore(ctx, func(s *selection.Store) error {
		for _, id := range args.Tail() {
			if s.Toggle(category, id) {
				r.writePlain("✓ Selected %s in %s\n", id, category.Label())
			} else {
				r.writePlain("✓ Removed %s from %s\n", id, category.Label())
			}
		}
		// An empty group is never saved, so its pinned selection has to go explicitly.
		if grouped && s.Snapshot().Selected.GroupEmpty(group) {
			if err := r.backend.DeletePinnedSelection(ctx, group); err != nil && !services.IsNotFound(err) {
				return fmt.Errorf("clear pinned selection %s: %w", group, err)
			}
			r.logger.Debug("pinned selection cleared", "group", group)
		}
		return nil
	})
}

// SelectionSave rewrites the pinned selection of every non-empty group from the backend's current state.
func (r *Runner) SelectionSave(ctx context.Context, cmd *cli.Command) error {
	groups, err := groupsArg(cmd.String("group"))
	if err != nil {
		return err
	}

	saved := 0
	err = r.withStore(ctx, func(s *selection.Store) error {
		selected := s.Snapshot().Selected
		for _, g := range groups {
			if !selected.GroupEmpty(g) {
				s.MarkDirty(g)
				saved++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if saved == 0 {
		return r.writePlain("Nothing to save\n")
	}
	return r.writePlain("✓ Saved %d groups\n", saved)
}

// SelectionClear deletes the pinned selections of the chosen groups.
func (r *Runner) SelectionClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	groups, err := groupsArg(cmd.String("group"))
	if err != nil {
		return err
	}

	var errs []error
	for _, g := range groups {
		if err := r.backend.DeletePinnedSelection(ctx, g); err != nil && !services.IsNotFound(err) {
			errs = append(errs, fmt.Errorf("%s: %w", g, err))
			continue
		}
		r.logger.Debug("pinned selection cleared", "group", g)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return r.writePlain("✓ Cleared %d groups\n", len(groups))
}
