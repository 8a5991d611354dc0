// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
)

var (
	_ services.Backend       = (*FakeBackend)(nil)
	_ services.CatalogSource = (*FakeCatalog)(nil)
)

// Call records one backend operation made against a [FakeBackend].
type Call struct {
	Op    string
	Group models.GroupType
}

// FakeBackend is an in-memory [services.Backend] that records calls and can inject failures.
type FakeBackend struct {
	mu     sync.Mutex
	calls  []Call
	pinned map[models.GroupType]models.PinnedSelection
	albums []models.Album
	nextID int

	HasToken        bool
	ListErr         error
	DeleteErr       error
	CreatePinnedErr error
	AlbumsErr       error
	CreateAlbumErr  error

	// Block, when non-nil, makes CreatePinnedSelection wait until it is closed.
	Block chan struct{}
	// AlbumsDelay slows Albums down to widen the window between pinned write and album create.
	AlbumsDelay time.Duration
	// Entered receives a value (if there is room) each time CreatePinnedSelection starts.
	Entered chan models.GroupType
}

// NewFakeBackend creates an authenticated fake with no data.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{HasToken: true, pinned: make(map[models.GroupType]models.PinnedSelection)}
}

func (f *FakeBackend) record(op string, g models.GroupType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Group: g})
}

func (f *FakeBackend) Authenticated() bool { return f.HasToken }

func (f *FakeBackend) PinnedSelections(ctx context.Context) ([]models.PinnedSelection, error) {
	f.record("list_pinned", "")
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PinnedSelection
	for _, g := range models.Groups() {
		if p, ok := f.pinned[g]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeBackend) DeletePinnedSelection(ctx context.Context, g models.GroupType) error {
	f.record("delete_pinned", g)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pinned[g]; !ok {
		return &services.APIError{StatusCode: http.StatusNotFound, Message: "pinned selection not found"}
	}
	delete(f.pinned, g)
	return nil
}

func (f *FakeBackend) CreatePinnedSelection(ctx context.Context, p models.PinnedSelection) (*models.PinnedSelection, error) {
	f.record("create_pinned", p.Type)
	if f.Entered != nil {
		select {
		case f.Entered <- p.Type:
		default:
		}
	}
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.CreatePinnedErr != nil {
		return nil, f.CreatePinnedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := models.NewPinnedSelection(p.Type, p.Items)
	created.ID = fmt.Sprintf("pinned-%d", f.nextID)
	f.pinned[p.Type] = created
	return &created, nil
}

func (f *FakeBackend) Albums(ctx context.Context) ([]models.Album, error) {
	f.record("list_albums", "")
	if f.AlbumsDelay > 0 {
		select {
		case <-time.After(f.AlbumsDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.AlbumsErr != nil {
		return nil, f.AlbumsErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Album(nil), f.albums...), nil
}

func (f *FakeBackend) CreateAlbum(ctx context.Context, req models.AlbumRequest) (*models.Album, error) {
	f.record("create_album", req.Type)
	if f.CreateAlbumErr != nil {
		return nil, f.CreateAlbumErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	album := models.Album{
		ID:                fmt.Sprintf("album-%d", f.nextID),
		Name:              req.Name,
		Note:              req.Note,
		Type:              req.Type,
		PinnedSelectionID: req.PinnedSelectionID,
	}
	f.albums = append(f.albums, album)
	return &album, nil
}

// SeedAlbums adds n existing albums.
func (f *FakeBackend) SeedAlbums(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.albums = append(f.albums, models.Album{ID: fmt.Sprintf("seed-%d", i), Name: fmt.Sprintf("Album %d", i+1), Type: models.WeddingDress})
	}
}

// SeedPinned stores p as if it had been created earlier.
func (f *FakeBackend) SeedPinned(p models.PinnedSelection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinned[p.Type] = models.NewPinnedSelection(p.Type, p.Items)
}

// Pinned returns the stored pinned selection of g.
func (f *FakeBackend) Pinned(g models.GroupType) (models.PinnedSelection, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pinned[g]
	return p, ok
}

// Calls returns a copy of every recorded call.
func (f *FakeBackend) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts calls of op, restricted to group g unless g is empty.
func (f *FakeBackend) CallCount(op string, g models.GroupType) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op && (g == "" || c.Group == g) {
			n++
		}
	}
	return n
}

// FakeCatalog serves catalog items from memory.
type FakeCatalog struct {
	Items map[models.Category][]models.CatalogItem
	Err   error
	// Fail lists categories whose fetch returns Err (or a generic error when Err is nil).
	Fail map[models.Category]bool

	mu   sync.Mutex
	hits int
}

func (f *FakeCatalog) Catalog(ctx context.Context, c models.Category) ([]models.CatalogItem, error) {
	f.mu.Lock()
	f.hits++
	f.mu.Unlock()

	if f.Fail[c] {
		if f.Err != nil {
			return nil, f.Err
		}
		return nil, fmt.Errorf("catalog %s unavailable", c)
	}
	if f.Err != nil && f.Fail == nil {
		return nil, f.Err
	}
	return f.Items[c], nil
}

// Hits returns the number of Catalog calls.
func (f *FakeCatalog) Hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits
}

// NewTestDB opens a migrated in-memory database closed at the end of the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
