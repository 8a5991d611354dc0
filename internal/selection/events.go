package selection

import (
	"fmt"

	"github.com/desertthunder/wedx/internal/models"
)

// EventKind enumerates the store's progress events.
type EventKind int

const (
	EventToggled EventKind = iota
	EventSaveStarted
	EventSaveCoalesced
	EventGroupSaved
	EventSaveFailed
	EventSaveFinished
	EventHydrated
	EventAlbumStarted
	EventAlbumCreated
	EventAlbumFailed
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventToggled:
		return "toggled"
	case EventSaveStarted:
		return "save_started"
	case EventSaveCoalesced:
		return "save_coalesced"
	case EventGroupSaved:
		return "group_saved"
	case EventSaveFailed:
		return "save_failed"
	case EventSaveFinished:
		return "save_finished"
	case EventHydrated:
		return "hydrated"
	case EventAlbumStarted:
		return "album_started"
	case EventAlbumCreated:
		return "album_created"
	case EventAlbumFailed:
		return "album_failed"
	case EventCleared:
		return "cleared"
	default:
		return ""
	}
}

// Event is a progress report from the [Store].
type Event struct {
	Kind     EventKind
	Group    models.GroupType
	Category models.Category
	ID       string
	Selected bool          // for EventToggled: whether ID is now selected
	Album    *models.Album // for EventAlbumCreated
	Err      error
	Message  string // human-readable, for status lines
}

func toggledEvent(c models.Category, id string, selected bool) Event {
	verb := "removed"
	if selected {
		verb = "added"
	}
	return Event{
		Kind:     EventToggled,
		Category: c,
		ID:       id,
		Selected: selected,
		Message:  fmt.Sprintf("%s %s %s", verb, c.Label(), id),
	}
}

func groupSavedEvent(g models.GroupType) Event {
	return Event{Kind: EventGroupSaved, Group: g, Message: fmt.Sprintf("Saved %s", g.Label())}
}

func groupFailedEvent(g models.GroupType, err error) Event {
	return Event{Kind: EventSaveFailed, Group: g, Err: err, Message: fmt.Sprintf("Saving %s failed: %v", g.Label(), err)}
}

func albumCreatedEvent(album *models.Album) Event {
	return Event{
		Kind:    EventAlbumCreated,
		Group:   album.Type,
		Album:   album,
		Message: fmt.Sprintf("Created %s", album.Name),
	}
}

func albumFailedEvent(g models.GroupType, err error) Event {
	return Event{Kind: EventAlbumFailed, Group: g, Err: err, Message: fmt.Sprintf("Album creation failed: %v", err)}
}
