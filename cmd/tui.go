package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wedx/internal/metrics"
	"github.com/desertthunder/wedx/internal/selection"
	"github.com/desertthunder/wedx/internal/server"
	"github.com/desertthunder/wedx/internal/shared"
	"github.com/desertthunder/wedx/internal/ui"
	"github.com/urfave/cli/v3"
)

const closeTimeout = 10 * time.Second

// TUI launches the interactive picker.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.SetLogLevel(fileLogger, r.config.Log.Level); err != nil {
		return err
	}
	r.SetLogger(fileLogger)
	if !r.wired {
		api := r.connect(ctx)
		r.api, r.backend, r.catalog = api, api, api
	}
	if r.backend == nil {
		return fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if listen := cmd.String("metrics-listen"); listen != "" || r.config.Metrics.Listen != "" {
		if listen == "" {
			listen = r.config.Metrics.Listen
		}
		r.serveMetrics(ctx, listen)
	}

	events := make(chan selection.Event, 64)
	store := r.newStore(events)

	model := ui.NewModel(ctx, store, r.catalogCache(), ui.Options{
		Events:         events,
		OnAlbumCreated: r.recordAlbum,
	})
	p := tea.NewProgram(model)

	_, runErr := p.Run()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
	defer closeCancel()
	if err := store.Close(closeCtx); err != nil {
		r.logger.Error("failed to save selection on exit", "error", err)
		runErr = errors.Join(runErr, fmt.Errorf("failed to save selection: %w", err))
	}

	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	return nil
}

// serveMetrics exposes /metrics and /healthz on addr until ctx is done.
func (r *Runner) serveMetrics(ctx context.Context, addr string) {
	router := server.NewMetricsRouter(metrics.Handler(), server.Recoverer(r.logger), server.RequestLogger(r.logger))
	srv := server.New(addr, router)

	go func() {
		r.logger.Info("serving metrics", "addr", addr)
		if err := server.Serve(ctx, srv); err != nil {
			r.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
}
