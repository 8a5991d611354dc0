package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/selection"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHydrated MsgKind = iota
	MsgItemsFetched
	MsgStoreEvent
	MsgEventsClosed
	MsgAlbumCreated
)

type itemsFetched struct {
	category models.Category
	items    []models.CatalogItem
	err      error
}

type albumResult struct {
	album *models.Album
	err   error
}

// hydratedMsg is the constructor for [MsgHydrated]
func hydratedMsg(err error) Msg {
	return Msg{kind: MsgHydrated, data: err}
}

// itemsFetchedMsg is the constructor for [MsgItemsFetched]
func itemsFetchedMsg(c models.Category, items []models.CatalogItem, err error) Msg {
	return Msg{kind: MsgItemsFetched, data: itemsFetched{category: c, items: items, err: err}}
}

// storeEventMsg is the constructor for [MsgStoreEvent]
func storeEventMsg(e selection.Event) Msg {
	return Msg{kind: MsgStoreEvent, data: e}
}

// albumCreatedMsg is the constructor for [MsgAlbumCreated]
func albumCreatedMsg(album *models.Album, err error) Msg {
	return Msg{kind: MsgAlbumCreated, data: albumResult{album: album, err: err}}
}
