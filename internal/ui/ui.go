package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/selection"
	"github.com/desertthunder/wedx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GroupListView ViewState = iota
	CategoryListView
	ItemListView
	ConfirmView
	CreatingView
	ResultView
)

// Catalog supplies the items shown for a category.
type Catalog interface {
	Items(ctx context.Context, category models.Category) ([]models.CatalogItem, error)
}

// Options configures a [Model].
type Options struct {
	// Events is the store's event channel; the status line follows it.
	Events <-chan selection.Event
	// OnAlbumCreated is called after a successful album creation with the number of items it holds.
	OnAlbumCreated func(album *models.Album, itemCount int)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	back     ViewState // view to return to from ConfirmView
	store    *selection.Store
	catalog  Catalog
	events   <-chan selection.Event
	onAlbum  func(*models.Album, int)
	width    int
	height   int
	groups   list.Model
	cats     list.Model
	items    list.Model
	group    models.GroupType
	category models.Category
	status   selection.Event
	album    *models.Album
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model over store.
func NewModel(ctx context.Context, store *selection.Store, catalog Catalog, opts Options) *Model {
	newList := func(title string) list.Model {
		l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
		l.Title = title
		l.SetShowHelp(false)
		return l
	}

	m := &Model{
		ctx:     ctx,
		view:    GroupListView,
		store:   store,
		catalog: catalog,
		events:  opts.Events,
		onAlbum: opts.OnAlbumCreated,
		groups:  newList("Selections"),
		cats:    newList(""),
		items:   newList(""),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.refreshGroups()
	return m
}

// Init hydrates the store from the backend and starts listening for store events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.hydrate(), m.waitForEvent())
}

// ViewState reports the current view.
func (m *Model) ViewState() ViewState { return m.view }

// Err returns the last error shown to the user.
func (m *Model) Err() error { return m.err }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.groups, &m.cats, &m.items} {
			l.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case GroupListView:
			return m.handleGroupKeys(msg)
		case CategoryListView:
			return m.handleCategoryKeys(msg)
		case ItemListView:
			return m.handleItemKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgHydrated:
		if err, _ := msg.data.(error); err != nil {
			m.status = selection.Event{Kind: selection.EventSaveFailed, Err: err, Message: fmt.Sprintf("Could not load pinned selections: %v", err)}
		}
		m.refreshLists()
		return m, nil

	case MsgItemsFetched:
		data := msg.data.(itemsFetched)
		if data.category != m.category {
			return m, nil
		}
		if data.err != nil {
			m.err = data.err
			m.view = CategoryListView
			return m, nil
		}
		m.err = nil
		return m, m.items.SetItems(m.catalogItems(data.items))

	case MsgStoreEvent:
		m.status = msg.data.(selection.Event)
		m.refreshLists()
		return m, m.waitForEvent()

	case MsgAlbumCreated:
		data := msg.data.(albumResult)
		m.album = data.album
		m.err = data.err
		m.view = ResultView
		m.refreshLists()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleGroupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.groups.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if g, ok := m.groups.SelectedItem().(groupItem); ok {
			m.group = g.group
			m.refreshCategories()
			m.cats.Select(0)
			m.view = CategoryListView
		}
		return m, nil
	case key.Matches(msg, m.keys.album):
		if g, ok := m.groups.SelectedItem().(groupItem); ok {
			m.group = g.group
			m.back = GroupListView
			m.view = ConfirmView
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.cats.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.refreshGroups()
		m.view = GroupListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if c, ok := m.cats.SelectedItem().(categoryItem); ok {
			m.category = c.category
			m.items.Title = c.category.Label()
			m.items.Select(0)
			m.view = ItemListView
			return m, tea.Batch(m.items.SetItems(nil), m.fetchItems(c.category))
		}
		return m, nil
	case key.Matches(msg, m.keys.album):
		m.back = CategoryListView
		m.view = ConfirmView
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleItemKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.items.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.refreshCategories()
		m.view = CategoryListView
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if it, ok := m.items.SelectedItem().(catalogItem); ok {
			it.selected = m.store.Toggle(m.category, it.item.ID)
			return m, m.items.SetItem(m.items.Index(), it)
		}
		return m, nil
	case key.Matches(msg, m.keys.album):
		if g, ok := m.category.Group(); ok {
			m.group = g
		}
		m.back = ItemListView
		m.view = ConfirmView
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = CreatingView
		return m, m.createAlbum(m.group)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = m.back
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart), key.Matches(msg, m.keys.back):
		m.view = GroupListView
		m.album = nil
		m.err = nil
		m.refreshGroups()
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GroupListView:
		m.groups, cmd = m.groups.Update(msg)
	case CategoryListView:
		m.cats, cmd = m.cats.Update(msg)
	case ItemListView:
		m.items, cmd = m.items.Update(msg)
	}
	return m, cmd
}

func (m *Model) refreshLists() {
	m.refreshGroups()
	if m.group != "" {
		m.refreshCategories()
	}
	if m.view == ItemListView {
		for i, li := range m.items.Items() {
			if it, ok := li.(catalogItem); ok {
				it.selected = m.store.IsSelected(m.category, it.item.ID)
				m.items.SetItem(i, it)
			}
		}
	}
}

func (m *Model) refreshGroups() {
	state := m.store.Snapshot()
	counts := state.Selected.Counts()
	items := make([]list.Item, 0, len(models.Groups()))
	for _, g := range models.Groups() {
		total := 0
		for _, c := range g.Categories() {
			total += counts[c]
		}
		items = append(items, groupItem{group: g, count: total, dirty: state.Dirty[g]})
	}
	m.groups.SetItems(items)
}

// refreshCategories lists the current group's categories. The wedding dress group also shows the local-only colors.
func (m *Model) refreshCategories() {
	state := m.store.Snapshot()
	counts := state.Selected.Counts()
	cats := m.group.Categories()
	if m.group == models.WeddingDress {
		cats = append(cats, models.Colors)
	}

	items := make([]list.Item, 0, len(cats))
	for _, c := range cats {
		items = append(items, categoryItem{category: c, count: counts[c]})
	}
	m.cats.Title = m.group.Label()
	m.cats.SetItems(items)
}

func (m *Model) catalogItems(items []models.CatalogItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = catalogItem{item: item, selected: m.store.IsSelected(m.category, item.ID)}
	}
	return out
}

func (m *Model) hydrate() tea.Cmd {
	return func() tea.Msg {
		return hydratedMsg(m.store.Hydrate(m.ctx))
	}
}

func (m *Model) fetchItems(c models.Category) tea.Cmd {
	return func() tea.Msg {
		items, err := m.catalog.Items(m.ctx, c)
		return itemsFetchedMsg(c, items, err)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return Msg{kind: MsgEventsClosed}
		}
		return storeEventMsg(e)
	}
}

func (m *Model) createAlbum(g models.GroupType) tea.Cmd {
	return func() tea.Msg {
		count := m.store.Snapshot().Selected.ForGroup(g).Total()
		album, err := m.store.CreateAlbum(m.ctx, g)
		if err == nil && m.onAlbum != nil {
			m.onAlbum(album, count)
		}
		return albumCreatedMsg(album, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case GroupListView:
		body = m.renderList(m.groups, m.keys.enter, m.keys.album, m.keys.quit)
	case CategoryListView:
		body = m.renderList(m.cats, m.keys.enter, m.keys.album, m.keys.back, m.keys.quit)
	case ItemListView:
		body = m.renderList(m.items, m.keys.toggle, m.keys.album, m.keys.back, m.keys.quit)
	case ConfirmView:
		body = m.renderConfirm()
	case CreatingView:
		body = styles.title.Render(fmt.Sprintf("Creating %s album...", m.group.Label()))
	case ResultView:
		body = m.renderResult()
	}
	return fmt.Sprintf("%s\n%s", body, m.renderStatus())
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	out := l.View()
	if m.err != nil {
		out += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(keys))
}

func (m *Model) renderConfirm() string {
	sel := m.store.Snapshot().Selected.ForGroup(m.group)
	title := styles.title.Render(fmt.Sprintf("Create a %s album?", m.group.Label()))

	var b strings.Builder
	for _, c := range m.group.Categories() {
		if n := len(sel[c]); n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", c.Label(), n)
		}
	}
	if b.Len() == 0 {
		b.WriteString(styles.warn.Render("  Nothing selected in this group yet.") + "\n")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		msg := fmt.Sprintf("Album creation failed: %v", m.err)
		if errors.Is(m.err, shared.ErrNoItemsSelected) {
			msg = "Select at least one item before creating an album."
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}
	if m.album == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render(fmt.Sprintf("✓ %s created", m.album.Name))
	info := fmt.Sprintf("\nType: %s\nID: %s\n%s", m.album.Type.Label(), m.album.ID, styles.help.Render(m.album.Note))
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderStatus() string {
	if m.status.Message == "" {
		return ""
	}
	switch m.status.Kind {
	case selection.EventSaveFailed, selection.EventAlbumFailed:
		return styles.err.Render(m.status.Message)
	case selection.EventSaveFinished:
		if m.status.Err != nil {
			return styles.err.Render(m.status.Message)
		}
		return styles.ok.Render(m.status.Message)
	case selection.EventSaveStarted, selection.EventSaveCoalesced, selection.EventAlbumStarted:
		return styles.warn.Render(m.status.Message)
	case selection.EventGroupSaved, selection.EventAlbumCreated:
		return styles.ok.Render(m.status.Message)
	default:
		return styles.help.Render(m.status.Message)
	}
}
