package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wedx/internal/metrics"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDebounce is the quiet period after the last toggle before a background save runs.
	DefaultDebounce = 800 * time.Millisecond

	maxParallelGroups = 3
)

// Options configures a [Store]. Zero values select defaults.
type Options struct {
	Debounce time.Duration
	Logger   *log.Logger
	Metrics  metrics.Recorder
	Events   chan<- Event
}

// Store holds the draft selection for one session.
//
// All mutation goes through its methods; it is safe for concurrent use.
type Store struct {
	backend  services.Backend
	logger   *log.Logger
	recorder metrics.Recorder
	events   chan<- Event
	debounce time.Duration

	mu          sync.Mutex
	selected    models.Selection
	dirty       map[models.GroupType]bool
	revision    map[models.GroupType]uint64 // bumped on every toggle of the group
	loaded      bool                        // a pinned selection was loaded or written
	saving      bool
	needsResave bool
	idle        chan struct{} // closed when the running save finishes
	timer       *time.Timer
	closed      bool

	bgCtx    context.Context
	bgCancel context.CancelFunc

	groupLocks map[models.GroupType]*sync.Mutex // serializes writes of one group's pinned selection
}

// State is a point-in-time copy of the store.
type State struct {
	Selected             models.Selection
	Dirty                map[models.GroupType]bool
	HasExistingSelection bool
	Saving               bool
	NeedsResave          bool
}

// NewStore creates an empty store writing to backend.
func NewStore(backend services.Backend, opts Options) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}

	locks := make(map[models.GroupType]*sync.Mutex)
	for _, g := range models.Groups() {
		locks[g] = &sync.Mutex{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		backend:    backend,
		logger:     shared.WithLogger(opts.Logger, "component", "selection"),
		recorder:   opts.Metrics,
		events:     opts.Events,
		debounce:   opts.Debounce,
		selected:   make(models.Selection),
		dirty:      make(map[models.GroupType]bool),
		revision:   make(map[models.GroupType]uint64),
		bgCtx:      ctx,
		bgCancel:   cancel,
		groupLocks: locks,
	}
}

// emit sends an event without blocking.
func (s *Store) emit(e Event) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- e:
	default:
	}
}

// Toggle adds id to category when absent and removes it when present, reporting whether it is now selected.
//
// The owning group is marked dirty and a background save is scheduled. Ids are not validated.
// Unknown categories are ignored.
func (s *Store) Toggle(category models.Category, id string) bool {
	if !category.Valid() {
		s.logger.Warn("ignoring toggle for unknown category", "category", category, "id", id)
		return false
	}

	s.mu.Lock()
	ids := s.selected[category]
	selected := false
	if i := slices.Index(ids, id); i >= 0 {
		s.selected[category] = slices.Delete(slices.Clone(ids), i, i+1)
	} else {
		s.selected[category] = append(slices.Clone(ids), id)
		selected = true
	}

	if g, ok := category.Group(); ok {
		s.dirty[g] = true
		s.revision[g]++
		s.scheduleSave()
	}
	s.mu.Unlock()

	s.recorder.Toggle(string(category))
	s.emit(toggledEvent(category, id, selected))
	return selected
}

// scheduleSave (re)arms the debounce timer. Callers hold s.mu.
func (s *Store) scheduleSave() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.backgroundSave)
}

func (s *Store) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// backgroundSave is the debounced caller of SaveAll. Failures are logged, never returned.
func (s *Store) backgroundSave() {
	if err := s.SaveAll(s.bgCtx); err != nil {
		s.logger.Warn("background save failed", "error", err)
	}
}

// SaveAll writes every dirty, non-empty group as a pinned selection.
//
// When a save is already running the call only requests a rerun and returns nil at once.
// Per-group failures are joined; groups that failed stay dirty.
func (s *Store) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.needsResave = true
		s.mu.Unlock()
		s.recorder.Coalesced()
		s.emit(Event{Kind: EventSaveCoalesced, Message: "Save queued"})
		return nil
	}
	s.beginSave()
	s.mu.Unlock()

	return s.runSaves(ctx)
}

// Flush cancels the pending debounce, waits for any running save and then saves every dirty group.
func (s *Store) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		s.stopTimer()
		if !s.saving {
			s.beginSave()
			s.mu.Unlock()
			return s.runSaves(ctx)
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// beginSave marks a save as running. Callers hold s.mu.
func (s *Store) beginSave() {
	s.saving = true
	s.idle = make(chan struct{})
}

// runSaves performs one save pass, and one more for every rerun requested while it ran.
func (s *Store) runSaves(ctx context.Context) error {
	var errs []error
	for {
		s.emit(Event{Kind: EventSaveStarted, Message: "Saving..."})
		if err := s.saveDirtyGroups(ctx); err != nil {
			errs = append(errs, err)
		}

		s.mu.Lock()
		if !s.needsResave {
			s.saving = false
			close(s.idle)
			s.mu.Unlock()
			break
		}
		s.needsResave = false
		s.mu.Unlock()
	}

	err := errors.Join(errs...)
	msg := "Saved"
	if err != nil {
		msg = "Save failed"
	}
	s.emit(Event{Kind: EventSaveFinished, Err: err, Message: msg})
	return err
}

// saveDirtyGroups writes the dirty, non-empty groups concurrently.
func (s *Store) saveDirtyGroups(ctx context.Context) error {
	s.mu.Lock()
	var groups []models.GroupType
	for _, g := range models.Groups() {
		if s.dirty[g] && !s.selected.GroupEmpty(g) {
			groups = append(groups, g)
		}
	}
	s.mu.Unlock()

	if len(groups) == 0 {
		return nil
	}

	errs := make([]error, len(groups))
	var eg errgroup.Group
	eg.SetLimit(maxParallelGroups)
	for i, g := range groups {
		eg.Go(func() error {
			saved, err := s.saveGroup(ctx, g)
			if !saved {
				return nil
			}
			s.recorder.GroupSave(string(g), err)
			if err != nil {
				errs[i] = err
				s.logger.Debug("group save failed", "group", g, "error", err)
				s.emit(groupFailedEvent(g, err))
				return err
			}
			s.emit(groupSavedEvent(g))
			return nil
		})
	}
	_ = eg.Wait()

	return errors.Join(errs...)
}

// saveGroup writes g while holding its group lock, reading the draft only once the lock is held.
// It reports false when g no longer needs a save, as after an album creation wrote it.
func (s *Store) saveGroup(ctx context.Context, g models.GroupType) (bool, error) {
	lock := s.groupLocks[g]
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if !s.dirty[g] || s.selected.GroupEmpty(g) {
		s.mu.Unlock()
		return false, nil
	}
	sel := s.selected.ForGroup(g)
	rev := s.revision[g]
	s.mu.Unlock()

	if _, err := s.replacePinned(ctx, g, sel); err != nil {
		return true, err
	}
	s.markSaved(g, rev)
	return true, nil
}

// replacePinned replaces the pinned selection of g: delete (tolerating not found), then create.
// Callers hold the group lock of g.
func (s *Store) replacePinned(ctx context.Context, g models.GroupType, sel models.Selection) (*models.PinnedSelection, error) {
	if err := s.backend.DeletePinnedSelection(ctx, g); err != nil {
		if !services.IsNotFound(err) {
			return nil, fmt.Errorf("delete pinned selection %s: %w", g, err)
		}
		s.logger.Debug("no previous pinned selection", "group", g)
	}

	created, err := s.backend.CreatePinnedSelection(ctx, models.NewPinnedSelection(g, sel))
	if err != nil {
		return nil, fmt.Errorf("create pinned selection %s: %w", g, err)
	}
	return created, nil
}

// markSaved clears the dirty flag of g unless it was toggled after the snapshot at rev.
func (s *Store) markSaved(g models.GroupType, rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	if s.revision[g] == rev {
		s.dirty[g] = false
	}
}

// CreateAlbum turns the draft of groupType into an album.
//
// It fails with [shared.ErrNoItemsSelected] before any network call when the group is empty.
// The group lock is held from the pinned write until the album exists.
// On success every category of every group is cleared; on failure the draft is left as it was.
func (s *Store) CreateAlbum(ctx context.Context, groupType models.GroupType) (*models.Album, error) {
	if !groupType.Valid() {
		return nil, fmt.Errorf("%w: group type %q", shared.ErrInvalidArgument, groupType)
	}

	lock := s.groupLocks[groupType]
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if s.selected.GroupEmpty(groupType) {
		s.mu.Unlock()
		return nil, shared.ErrNoItemsSelected
	}
	sel := s.selected.ForGroup(groupType)
	rev := s.revision[groupType]
	s.mu.Unlock()

	s.emit(Event{Kind: EventAlbumStarted, Group: groupType, Message: "Creating album..."})

	album, err := s.createAlbum(ctx, groupType, sel, rev)
	s.recorder.Album(string(groupType), err)
	if err != nil {
		s.logger.Error("album creation failed", "type", groupType, "error", err)
		s.emit(albumFailedEvent(groupType, err))
		return nil, err
	}

	s.logger.Info("album created", "type", groupType, "name", album.Name, "id", album.ID)
	s.ClearSelections()
	s.emit(albumCreatedEvent(album))
	return album, nil
}

func (s *Store) createAlbum(ctx context.Context, g models.GroupType, sel models.Selection, rev uint64) (*models.Album, error) {
	pinned, err := s.replacePinned(ctx, g, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to save pinned selection: %w", err)
	}
	s.markSaved(g, rev)

	note := BuildNote(g, sel)
	s.logger.Debug("album note", "note", note)

	count := 0
	if albums, err := s.backend.Albums(ctx); err != nil {
		s.logger.Warn("could not count albums, naming from zero", "error", err)
	} else {
		count = len(albums)
	}

	album, err := s.backend.CreateAlbum(ctx, models.AlbumRequest{
		Name:              fmt.Sprintf("Album %d", count+1),
		Note:              note,
		Type:              g,
		PinnedSelectionID: pinned.ID,
		IdempotencyKey:    shared.GenerateID(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}
	return album, nil
}

// Hydrate loads the pinned selections into the draft when the backend has an auth token.
//
// Without a token it does nothing. Groups with unsaved local changes keep their local state.
func (s *Store) Hydrate(ctx context.Context) error {
	if !s.backend.Authenticated() {
		s.logger.Debug("no auth token, skipping hydration")
		return nil
	}

	selections, err := s.backend.PinnedSelections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pinned selections: %w", err)
	}

	s.mu.Lock()
	loaded := 0
	for _, p := range selections {
		if !p.Type.Valid() || s.dirty[p.Type] {
			continue
		}
		for _, c := range p.Type.Categories() {
			s.selected[c] = models.Dedup(p.Items[c])
		}
		loaded++
	}
	if loaded > 0 {
		s.loaded = true
	}
	s.mu.Unlock()

	s.logger.Debug("hydrated", "pinned_selections", loaded)
	s.emit(Event{Kind: EventHydrated, Message: fmt.Sprintf("Loaded %d pinned selections", loaded)})
	return nil
}

// ClearSelections empties every category and resets the dirty and existing-selection flags.
func (s *Store) ClearSelections() {
	s.mu.Lock()
	s.stopTimer()
	s.selected = make(models.Selection)
	s.dirty = make(map[models.GroupType]bool)
	s.loaded = false
	s.mu.Unlock()

	s.emit(Event{Kind: EventCleared, Message: "Selections cleared"})
}

// MarkDirty flags g for the next save without changing its items, so a pinned
// selection can be rewritten from the current draft.
func (s *Store) MarkDirty(g models.GroupType) {
	if !g.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[g] = true
	s.revision[g]++
}

// Selected returns a copy of the ids picked in category.
func (s *Store) Selected(category models.Category) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected.IDs(category))
}

// IsSelected reports whether id is picked in category.
func (s *Store) IsSelected(category models.Category, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.Contains(category, id)
}

// IsDirty reports whether g has changes not yet saved.
func (s *Store) IsDirty(g models.GroupType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty[g]
}

// HasExistingSelection reports whether a pinned selection was loaded or written,
// or any group currently has a non-empty selection.
func (s *Store) HasExistingSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasExisting()
}

func (s *Store) hasExisting() bool {
	if s.loaded {
		return true
	}
	for _, g := range models.Groups() {
		if !s.selected.GroupEmpty(g) {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the whole store state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Selected:             s.selected.Clone(),
		Dirty:                maps.Clone(s.dirty),
		HasExistingSelection: s.hasExisting(),
		Saving:               s.saving,
		NeedsResave:          s.needsResave,
	}
}

// Close stops scheduling background saves and flushes pending changes.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrStoreClosed
	}
	s.closed = true
	s.mu.Unlock()

	defer s.bgCancel()
	return s.Flush(ctx)
}
