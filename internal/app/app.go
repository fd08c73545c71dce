// Package app implements the application layer for bb.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/bb/internal/adapters/telemetry"   //nolint:depguard // Wired in app layer
	"go.trai.ch/bb/internal/adapters/translation" //nolint:depguard // Wired in app layer
	"go.trai.ch/bb/internal/adapters/watcher"     //nolint:depguard // Wired in app layer
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/bb/internal/ui/output"
	"go.trai.ch/zerr"
)

// App runs compile passes for the project found from a working directory.
type App struct {
	loader  ports.ConfigLoader
	builder ports.Builder
	watcher ports.Watcher
	catalog *translation.Catalog
	logger  ports.Logger

	// mu serializes passes; the cache is not reentrant.
	mu     sync.Mutex
	out    io.Writer
	window time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	builder ports.Builder,
	w ports.Watcher,
	catalog *translation.Catalog,
	log ports.Logger,
) *App {
	return &App{
		loader:  loader,
		builder: builder,
		watcher: w,
		catalog: catalog,
		logger:  log,
		out:     os.Stderr,
		window:  watcher.DefaultDebounceWindow,
	}
}

// WithOutput sets where pass summaries are printed.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithDebounceWindow sets the quiet period watch mode waits for.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.window = d
	return a
}

// BuildOptions configure a Build or Watch call.
type BuildOptions struct {
	// Dir is the working directory the project file is searched from.
	Dir       string
	Overrides domain.Overrides
	// Force rebuilds every file regardless of freshness.
	Force bool
	// Verbose reports stage timings.
	Verbose bool
}

// Build runs a single pass. A pass in which some files failed to emit returns
// its result together with an error matching ErrFilesFailed.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*domain.BuildResult, error) {
	project, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	res, err := a.pass(ctx, project, opts.Force)
	if err != nil {
		return nil, err
	}
	if len(res.Failed) > 0 {
		return res, errors.Join(domain.ErrFilesFailed, zerr.With(domain.ErrBuildFailed, "failed", len(res.Failed)))
	}
	return res, nil
}

// Watch runs a pass, then another one after every debounced batch of source
// changes, until ctx is done. Failed passes are logged and watching goes on.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	project, err := a.load(opts)
	if err != nil {
		return err
	}

	if _, err := a.pass(ctx, project, opts.Force); err != nil {
		a.logger.Error(err)
	}

	if err := a.watcher.Start(ctx, project.Dir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "dir", project.Dir)
	}
	defer func() { _ = a.watcher.Stop() }()

	a.logger.Info(fmt.Sprintf("watching %s", project.Dir))

	debouncer := watcher.NewDebouncer(a.window, func(paths []string) {
		if ctx.Err() != nil {
			return
		}
		a.logger.Info(describeChange(project.Dir, paths))
		if _, err := a.pass(ctx, project, false); err != nil {
			a.logger.Error(err)
		}
	})

	for ev := range a.watcher.Events() {
		if isOutput(project, ev.Path) {
			continue
		}
		debouncer.Add(ev.Path)
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) load(opts BuildOptions) (*domain.Project, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}

	project, err := a.loader.Load(dir, opts.Overrides)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Verbose {
		setupOTel(telemetry.NewLogBridge(a.logger))
	}
	return project, nil
}

func (a *App) pass(ctx context.Context, project *domain.Project, force bool) (*domain.BuildResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.builder.Invalidate()
	if force {
		a.builder.ForceRebuild()
	}

	start := time.Now()
	res, err := a.builder.Compile(ctx, project)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	if project.TranslationReplacer != nil {
		if err := a.flushCatalog(project); err != nil {
			a.logger.Error(err)
		}
	}

	_, _ = io.WriteString(a.out, output.Summary(output.New(a.out), res, time.Since(start)))
	return res, nil
}

func (a *App) flushCatalog(project *domain.Project) error {
	data, commit, err := a.catalog.Flush()
	if err != nil || data == nil {
		return err
	}
	if err := project.WriteFile(domain.TranslationsName, data); err != nil {
		return err
	}
	commit()
	return nil
}

// isOutput reports whether path lies in the output directory.
func isOutput(project *domain.Project, path string) bool {
	if project.OutDir == "" {
		return false
	}
	rel, err := filepath.Rel(project.OutDir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func describeChange(root string, paths []string) string {
	first := paths[0]
	if rel, err := filepath.Rel(root, first); err == nil {
		first = rel
	}
	if len(paths) == 1 {
		return fmt.Sprintf("%s changed", first)
	}
	return fmt.Sprintf("%s and %d more changed", first, len(paths)-1)
}

// setupOTel routes finished spans to the log bridge.
func setupOTel(bridge *telemetry.LogBridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
}
