package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/wedx/internal/metrics"
	"github.com/desertthunder/wedx/internal/models"
	"github.com/desertthunder/wedx/internal/repositories"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	tu "github.com/desertthunder/wedx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type testEnv struct {
	runner  *Runner
	output  *bytes.Buffer
	backend *tu.FakeBackend
	catalog *tu.FakeCatalog
	tokens  *shared.TokenStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	output := &bytes.Buffer{}
	backend := tu.NewFakeBackend()
	catalog := &tu.FakeCatalog{Items: map[models.Category][]models.CatalogItem{}}
	tokens := shared.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	runner := NewRunner(RunnerOpts{
		Backend: backend,
		Catalog: catalog,
		Tokens:  tokens,
		DB:      tu.NewTestDB(t),
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		Metrics: metrics.Nop{},
	})
	return &testEnv{runner: runner, output: output, backend: backend, catalog: catalog, tokens: tokens}
}

func (e *testEnv) run(args ...string) error {
	e.output.Reset()
	return e.runner.app().Run(context.Background(), append([]string{"wedx"}, args...))
}

// newAPIEnv wires the runner to a real API client talking to handler.
func newAPIEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	output := &bytes.Buffer{}
	tokens := shared.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	runner := NewRunner(RunnerOpts{
		API:     services.NewAPIService(services.APIOptions{BaseURL: srv.URL}),
		Tokens:  tokens,
		DB:      tu.NewTestDB(t),
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		Metrics: metrics.Nop{},
	})
	return &testEnv{runner: runner, output: output, tokens: tokens}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAPIService(services.APIOptions{})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			assert.Same(t, config, runner.config)
			assert.Same(t, logger, runner.logger)
			assert.Same(t, output, runner.output)
			assert.Same(t, httpClient, runner.httpClient)
			assert.Same(t, api, runner.api)
			assert.Equal(t, services.Backend(api), runner.backend)
			assert.Equal(t, services.CatalogSource(api), runner.catalog)
			assert.True(t, runner.wired)
			assert.NotNil(t, runner.engine)
		})

		t.Run("explicit backend wins over the API", func(t *testing.T) {
			backend := tu.NewFakeBackend()
			runner := NewRunner(RunnerOpts{
				API:     services.NewAPIService(services.APIOptions{}),
				Backend: backend,
			})
			assert.Equal(t, services.Backend(backend), runner.backend)
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			assert.NotNil(t, runner.config)
			assert.NotNil(t, runner.logger)
			assert.NotNil(t, runner.tokens)
			assert.Equal(t, os.Stdout, runner.output)
			assert.Equal(t, http.DefaultClient, runner.httpClient)
			assert.Equal(t, metrics.Prometheus{}, runner.recorder)
			assert.Nil(t, runner.backend)
			assert.False(t, runner.wired)
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			require.NoError(t, runner.writeJSON(map[string]string{"key": "value"}, true))
			assert.Contains(t, output.String(), `"key": "value"`)
			assert.True(t, strings.HasSuffix(output.String(), "\n"))
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			require.NoError(t, runner.writeJSON(map[string]string{"key": "value"}, false))
			assert.Equal(t, `{"key":"value"}`+"\n", output.String())
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to marshal JSON")
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to write output")
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			require.NoError(t, runner.writePlain("hello %s", "world"))
			assert.Equal(t, "hello world", output.String())
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to write output")
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		require.NotEmpty(t, commands)
		names := make([]string, 0, len(commands))
		for i, cmd := range commands {
			require.NotNil(t, cmd, "command at index %d", i)
			names = append(names, cmd.Name)
		}
		assert.ElementsMatch(t, []string{"setup", "auth", "catalog", "selection", "album", "api", "tui"}, names)
	})
}

func TestSelectionCommands(t *testing.T) {
	t.Run("toggle saves the owning group", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.run("selection", "toggle", "veil", "v1", "v2"))
		assert.Contains(t, env.output.String(), "Selected v1 in Veils")

		pinned, ok := env.backend.Pinned(models.WeddingDress)
		require.True(t, ok)
		assert.Equal(t, []string{"v1", "v2"}, pinned.Items[models.Veils])
		assert.Equal(t, 1, env.backend.CallCount("create_pinned", ""))
	})

	t.Run("toggle starts from the pinned selection", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedPinned(models.NewPinnedSelection(models.WeddingDress, models.Selection{models.Veils: {"v1", "v2"}}))

		require.NoError(t, env.run("selection", "toggle", "veils", "v1"))
		assert.Contains(t, env.output.String(), "Removed v1 from Veils")

		pinned, _ := env.backend.Pinned(models.WeddingDress)
		assert.Equal(t, []string{"v2"}, pinned.Items[models.Veils])
	})

	t.Run("removing the last item clears the pinned selection", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedPinned(models.NewPinnedSelection(models.WeddingDress, models.Selection{models.Veils: {"v1"}}))

		require.NoError(t, env.run("selection", "toggle", "veils", "v1"))
		assert.Contains(t, env.output.String(), "Removed v1 from Veils")

		_, ok := env.backend.Pinned(models.WeddingDress)
		assert.False(t, ok)
		assert.Zero(t, env.backend.CallCount("create_pinned", models.WeddingDress))

		require.NoError(t, env.run("selection", "show", "--format", "json"))
		assert.NotContains(t, env.output.String(), "v1")
	})

	t.Run("removing from a never saved group tolerates not found", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.run("selection", "toggle", "veils", "v1", "v1"))
		assert.Equal(t, 1, env.backend.CallCount("delete_pinned", models.WeddingDress))
		_, ok := env.backend.Pinned(models.WeddingDress)
		assert.False(t, ok)
	})

	t.Run("toggle needs a token", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.HasToken = false

		err := env.run("selection", "toggle", "veils", "v1")
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Empty(t, env.backend.Calls())
	})

	t.Run("toggle validates arguments", func(t *testing.T) {
		env := newTestEnv(t)

		assert.ErrorIs(t, env.run("selection", "toggle", "veils"), shared.ErrMissingArgument)
		assert.ErrorIs(t, env.run("selection", "toggle", "shoes", "s1"), shared.ErrInvalidArgument)
	})

	t.Run("show as json", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedPinned(models.NewPinnedSelection(models.Vest, models.Selection{models.GroomLapel: {"l1"}}))

		require.NoError(t, env.run("selection", "show", "--format", "json"))

		var view selectionView
		require.NoError(t, json.Unmarshal(env.output.Bytes(), &view))
		assert.Equal(t, []string{"l1"}, view.Selected[models.GroomLapel])
		assert.True(t, view.HasExistingSelection)
	})

	t.Run("show as markdown with cached names", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedPinned(models.NewPinnedSelection(models.WeddingDress, models.Selection{models.Veils: {"v1"}}))
		db, err := env.runner.database()
		require.NoError(t, err)
		require.NoError(t, repositories.NewCatalogRepository(db).Upsert(&models.CatalogItem{
			ID: "v1", Category: models.Veils, Name: "Cathedral veil",
		}))

		require.NoError(t, env.run("selection", "show", "--format", "markdown", "--names"))
		assert.Contains(t, env.output.String(), "## Wedding dress")
		assert.Contains(t, env.output.String(), "- **Veils**: Cathedral veil")
	})

	t.Run("show rejects unknown formats", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.run("selection", "show", "--format", "yaml"), shared.ErrInvalidFlag)
	})

	t.Run("save rewrites non-empty groups", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedPinned(models.NewPinnedSelection(models.WeddingDress, models.Selection{models.Veils: {"v1"}}))

		require.NoError(t, env.run("selection", "save"))
		assert.Contains(t, env.output.String(), "Saved 1 groups")
		assert.Equal(t, 1, env.backend.CallCount("delete_pinned", models.WeddingDress))
		assert.Equal(t, 1, env.backend.CallCount("create_pinned", models.WeddingDress))
		assert.Equal(t, 0, env.backend.CallCount("create_pinned", models.Vest))
	})

	t.Run("save with nothing selected", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.run("selection", "save"))
		assert.Contains(t, env.output.String(), "Nothing to save")
		assert.Zero(t, env.backend.CallCount("create_pinned", ""))
	})

	t.Run("clear deletes one group and tolerates missing ones", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedPinned(models.NewPinnedSelection(models.Vest, models.Selection{models.GroomDecor: {"d1"}}))

		require.NoError(t, env.run("selection", "clear", "--group", "vest"))
		_, ok := env.backend.Pinned(models.Vest)
		assert.False(t, ok)

		require.NoError(t, env.run("selection", "clear"))
		assert.Equal(t, len(models.Groups()), env.backend.CallCount("delete_pinned", "")-1)
	})
}

func TestAlbumCommands(t *testing.T) {
	t.Run("create names the album and logs it", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedAlbums(2)
		env.backend.SeedPinned(models.NewPinnedSelection(models.WeddingDress, models.Selection{
			models.Veils:   {"v1"},
			models.Jewelry: {"j1"},
		}))

		require.NoError(t, env.run("album", "create", "wedding-dress"))
		assert.Contains(t, env.output.String(), "Album created: Album 3")
		assert.Contains(t, env.output.String(), "Items: 2")

		db, err := env.runner.database()
		require.NoError(t, err)
		entries, err := repositories.NewAlbumLogRepository(db).List(models.WeddingDress)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Album 3", entries[0].Name)
		assert.Equal(t, 2, entries[0].ItemCount)
	})

	t.Run("create with an empty group", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.run("album", "create", "vest")
		assert.ErrorIs(t, err, shared.ErrNoItemsSelected)
		assert.Zero(t, env.backend.CallCount("create_album", ""))
	})

	t.Run("create with a bad group", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.run("album", "create", "suits"), shared.ErrInvalidArgument)
		assert.ErrorIs(t, env.run("album", "create"), shared.ErrMissingArgument)
	})

	t.Run("history lists logged albums", func(t *testing.T) {
		env := newTestEnv(t)
		env.runner.recordAlbum(&models.Album{ID: "a1", Name: "Album 1", Type: models.ToneColor}, 3)

		require.NoError(t, env.run("album", "history", "--format", "json"))
		var entries []models.AlbumLogEntry
		require.NoError(t, json.Unmarshal(env.output.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "a1", entries[0].AlbumID)

		require.NoError(t, env.run("album", "history", "--group", "vest"))
		assert.Contains(t, env.output.String(), "Albums created here: 0")
	})

	t.Run("list exports csv", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.SeedAlbums(2)
		path := filepath.Join(t.TempDir(), "out", "albums.csv")

		require.NoError(t, env.run("album", "list", "--format", "csv", "--output", path))
		assert.Contains(t, env.output.String(), "2 albums written")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "ID,Name,Type"))
	})
}

func TestCatalogCommands(t *testing.T) {
	veils := []models.CatalogItem{
		{ID: "v1", Category: models.Veils, Name: "Cathedral"},
		{ID: "v2", Category: models.Veils, Name: "Birdcage"},
	}

	t.Run("list falls back to the backend and caches", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.Items[models.Veils] = veils

		require.NoError(t, env.run("catalog", "list", "--category", "veils", "--format", "json"))
		var items []models.CatalogItem
		require.NoError(t, json.Unmarshal(env.output.Bytes(), &items))
		assert.Len(t, items, 2)
		assert.Equal(t, 1, env.catalog.Hits())

		require.NoError(t, env.run("catalog", "list", "--category", "veil"))
		assert.Contains(t, env.output.String(), "Birdcage")
		assert.Equal(t, 1, env.catalog.Hits())

		require.NoError(t, env.run("catalog", "list", "--category", "veils", "--refresh", "--format", "csv"))
		assert.Equal(t, 2, env.catalog.Hits())
	})

	t.Run("sync caches the requested categories", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.Items[models.Veils] = veils
		env.catalog.Items[models.Jewelry] = []models.CatalogItem{{ID: "j1", Category: models.Jewelry, Name: "Pearls"}}

		require.NoError(t, env.run("catalog", "sync", "--category", "veils", "--category", "jewelry"))
		assert.Contains(t, env.output.String(), "Synced 2/2 categories (3 items)")

		db, err := env.runner.database()
		require.NoError(t, err)
		count, err := repositories.NewCatalogRepository(db).Count("")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("sync rejects unknown categories", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.run("catalog", "sync", "--category", "shoes"), shared.ErrInvalidArgument)
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("import-curl saves the bearer token", func(t *testing.T) {
		env := newTestEnv(t)

		curl := `curl 'https://wed.example.com/api/albums' -H 'Accept: application/json' -H 'Authorization: Bearer tok-123'`
		require.NoError(t, env.run("auth", "import-curl", "--curl", curl))

		token, err := env.tokens.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token.AccessToken)
	})

	t.Run("import-curl validates its flags", func(t *testing.T) {
		env := newTestEnv(t)

		assert.ErrorIs(t, env.run("auth", "import-curl"), shared.ErrMissingArgument)
		assert.ErrorIs(t, env.run("auth", "import-curl", "--curl", "x", "--curl-file", "y"), shared.ErrInvalidArgument)
		assert.ErrorIs(t, env.run("auth", "import-curl", "--curl", `curl 'https://x' -H 'Accept: */*'`), shared.ErrInvalidInput)
	})

	t.Run("logout deletes the token", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.tokens.Save(&oauth2.Token{AccessToken: "tok"}))

		require.NoError(t, env.run("auth", "logout"))
		_, err := env.tokens.Load()
		assert.ErrorIs(t, err, shared.ErrNoToken)
	})

	t.Run("login without credentials", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.run("auth", "login"), shared.ErrMissingCredentials)
	})

	t.Run("status reports token and health", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok","version":"1.4.0"}`))
		})
		env := newAPIEnv(t, mux)

		require.NoError(t, env.run("auth", "status"))
		out := env.output.String()
		assert.Contains(t, out, "Not signed in")
		assert.Contains(t, out, "Status: ok")
		assert.Contains(t, out, "Version: 1.4.0")
	})
}

func TestAPICommands(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /albums", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"a1","name":"Album 1","type":"vest"}]`))
	})
	mux.HandleFunc("GET /pinned-selections", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	t.Run("get prints json", func(t *testing.T) {
		env := newAPIEnv(t, mux)

		require.NoError(t, env.run("api", "get", "--pretty=false", "/albums"))
		assert.Equal(t, `[{"id":"a1","name":"Album 1","type":"vest"}]`+"\n", env.output.String())
	})

	t.Run("get fails on non-2xx", func(t *testing.T) {
		env := newAPIEnv(t, mux)
		assert.ErrorIs(t, env.run("api", "get", "/pinned-selections"), shared.ErrAPIRequest)
	})

	t.Run("dump collects endpoints and errors", func(t *testing.T) {
		env := newAPIEnv(t, mux)

		require.NoError(t, env.run("api", "dump"))
		out := env.output.String()
		assert.Contains(t, out, "Dump complete")
		assert.Contains(t, out, `"health"`)
		assert.Contains(t, out, `"Album 1"`)
		assert.Contains(t, out, "/pinned-selections")
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes the example once", func(t *testing.T) {
		env := newTestEnv(t)
		path := filepath.Join(t.TempDir(), "conf", "config.toml")

		require.NoError(t, env.run("setup", "config", path))
		_, err := shared.LoadConfig(path)
		require.NoError(t, err)

		assert.Error(t, env.run("setup", "config", path))
	})

	t.Run("database runs migrations", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.run("setup", "database"))
		assert.Contains(t, env.output.String(), "Database ready")
	})
}
