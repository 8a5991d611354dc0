package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wedx/internal/metrics"
	"github.com/desertthunder/wedx/internal/selection"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	"github.com/desertthunder/wedx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	api        *services.APIService
	backend    services.Backend
	catalog    services.CatalogSource
	tokens     *shared.TokenStore
	db         *sql.DB
	ownsDB     bool
	wired      bool // dependencies were injected; the config file is not read
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	recorder   metrics.Recorder
	engine     *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Backend (or API) is set the runner is considered wired and the config file is not read.
type RunnerOpts struct {
	Config     *shared.Config
	API        *services.APIService
	Backend    services.Backend       // defaults to API
	Catalog    services.CatalogSource // defaults to API
	Tokens     *shared.TokenStore
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Metrics    metrics.Recorder
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Prometheus{}
	}
	if opts.Tokens == nil {
		opts.Tokens = shared.NewTokenStore(opts.Config.Auth.TokenPath)
	}

	r := &Runner{
		config:     opts.Config,
		api:        opts.API,
		backend:    opts.Backend,
		catalog:    opts.Catalog,
		tokens:     opts.Tokens,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		recorder:   opts.Metrics,
		wired:      opts.API != nil || opts.Backend != nil,
	}
	if opts.API != nil {
		r.useAPI(opts.API)
	}
	r.engine = r.newEngine(nil)
	return r
}

// useAPI makes api the default backend and catalog source.
func (r *Runner) useAPI(api *services.APIService) {
	r.api = api
	if r.backend == nil {
		r.backend = api
	}
	if r.catalog == nil {
		r.catalog = api
	}
}

// before loads the configuration and connects to the backend unless the runner was wired up front.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.wired {
		return ctx, nil
	}

	config, err := shared.ResolveConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.tokens = shared.NewTokenStore(config.Auth.TokenPath)

	if err := shared.SetLogLevel(r.logger, config.Log.Level); err != nil {
		return ctx, err
	}

	r.useAPI(r.connect(ctx))
	r.engine = r.newEngine(nil)
	return ctx, nil
}

// after releases the database opened during the command.
func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db != nil && r.ownsDB {
		err := r.db.Close()
		r.db = nil
		r.ownsDB = false
		return err
	}
	return nil
}

// connect builds the API client, authenticated when a token has been saved.
func (r *Runner) connect(ctx context.Context) *services.APIService {
	var src oauth2.TokenSource
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	s, err := services.StoredTokenSource(ctx, services.NewOAuthConfig(r.config.Auth), r.tokens)
	switch {
	case errors.Is(err, shared.ErrNoToken):
		r.logger.Debug("no saved token, requests are unauthenticated", "path", r.tokens.Path())
	case err != nil:
		r.logger.Warn("could not load saved token", "error", err)
	default:
		src = s
	}

	return services.NewAPIService(services.APIOptions{
		BaseURL:           r.config.Backend.BaseURL,
		HTTPClient:        r.httpClient,
		TokenSource:       src,
		Timeout:           r.config.Backend.Timeout.Duration,
		RequestsPerSecond: r.config.Backend.RequestsPerSecond,
		Burst:             r.config.Backend.Burst,
		Logger:            r.logger,
	})
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) newEngine(cacher tasks.CatalogCacher) *tasks.Engine {
	var api tasks.APIClient
	if r.api != nil {
		api = r.api
	}
	return tasks.NewEngine(r.catalog, api, cacher)
}

func (r *Runner) newStore(events chan<- selection.Event) *selection.Store {
	return selection.NewStore(r.backend, selection.Options{
		Debounce: r.config.Selection.Debounce.Duration,
		Logger:   r.logger,
		Metrics:  r.recorder,
		Events:   events,
	})
}

// database opens the configured database and applies pending migrations on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.ownsDB = true
	return db, nil
}

func (r *Runner) requireAuth() error {
	if r.backend == nil || !r.backend.Authenticated() {
		return fmt.Errorf("%w: run 'wedx auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, catalogCommand, selectionCommand, albumCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
