// Package builder runs incremental compile passes over a project.
package builder

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/bb/internal/engine/cache"
	"go.trai.ch/bb/internal/engine/resolver"
	"go.trai.ch/bb/internal/engine/sprites"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Builder)(nil)

// Builder drives compile passes against one cache. Passes must not run
// concurrently; the caller serializes them.
type Builder struct {
	cache    *cache.Cache
	resolver *resolver.Resolver
	compiler ports.Compiler
	sprites  *sprites.Bundle
	bundler  ports.Bundler
	logger   ports.Logger
	tracer   ports.Tracer

	// outputs holds the last emitted code per cache key, so a total bundle
	// can include modules that were fresh in the current pass.
	outputs map[string][]byte
	bundled bool
}

// New creates a Builder.
func New(
	c *cache.Cache,
	r *resolver.Resolver,
	compiler ports.Compiler,
	spriteBundle *sprites.Bundle,
	bundler ports.Bundler,
	logger ports.Logger,
	tracer ports.Tracer,
) *Builder {
	return &Builder{
		cache:    c,
		resolver: r,
		compiler: compiler,
		sprites:  spriteBundle,
		bundler:  bundler,
		logger:   logger,
		tracer:   tracer,
		outputs:  make(map[string][]byte),
	}
}

// Cache returns the cache the builder works on.
func (b *Builder) Cache() *cache.Cache {
	return b.cache
}

// Invalidate forgets probed modification times so the next pass re-stats
// every file.
func (b *Builder) Invalidate() {
	b.cache.ClearFileTimeModifications()
}

// ForceRebuild makes the next pass re-analyze and re-emit every file.
func (b *Builder) ForceRebuild() {
	b.cache.ForceRebuild()
	b.bundled = false
}

// pass is the state of a single compile pass.
type pass struct {
	project *domain.Project
	entries []string
	graph   *domain.ModuleGraph
	files   map[string]*domain.CacheEntry
	order   []string
	result  *domain.BuildResult
}

type stage struct {
	name string
	run  func(ctx context.Context, p *pass) error
}

// Compile runs one pass over project. Configuration and resolution faults
// abort the pass and are returned; diagnostics and per-file emission failures
// are logged and reflected in the result.
func (b *Builder) Compile(ctx context.Context, project *domain.Project) (*domain.BuildResult, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	p := &pass{
		project: project,
		entries: project.EntryModules(),
		graph:   domain.NewModuleGraph(),
		files:   make(map[string]*domain.CacheEntry),
		result:  &domain.BuildResult{},
	}

	if b.upToDate(p) {
		p.result.UpToDate = true
		return p.result, nil
	}

	if project.SpriteMerge {
		defer b.sprites.Clear(true)
	}

	stages := []stage{
		{name: "discover", run: b.discover},
		{name: "collect", run: b.collect},
		{name: "atlas", run: b.buildAtlas},
		{name: "emit", run: b.emitAll},
		{name: "copy", run: b.copyScripts},
		{name: "bundle", run: b.bundle},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.runStage(ctx, s, p); err != nil {
			return nil, err
		}
	}
	return p.result, nil
}

func (b *Builder) runStage(ctx context.Context, s stage, p *pass) error {
	ctx, span := b.tracer.Start(ctx, "build."+s.name)
	defer span.End()

	if err := s.run(ctx, p); err != nil {
		err = zerr.With(err, "stage", s.name)
		span.RecordError(err)
		return err
	}
	return nil
}

// upToDate reports whether every entry's output is at least as new as the entry
// and everything it depends on, every prebuilt script is copied, the total
// bundle exists when one is requested, and no side pipeline forces a full
// emission.
func (b *Builder) upToDate(p *pass) bool {
	if p.project.SideEffectsActive() || p.project.TotalBundle && !b.bundled {
		return false
	}
	b.cache.ClearMaxTimeForDeps()
	for _, entry := range p.entries {
		if !b.cache.Fresh(entry, "", false) {
			return false
		}
	}
	for _, script := range b.resolver.PendingScripts() {
		e := b.cache.Stat(script, "")
		if !e.Exists() || !e.OutputTime.Valid() || e.CurTime > e.OutputTime {
			return false
		}
	}
	return true
}

// moduleName returns the output path of a file relative to the project, without extension.
func moduleName(project *domain.Project, path string) string {
	rel := project.RelativeOutput(path)
	if strings.HasSuffix(strings.ToLower(rel), domain.ExtJS) {
		return rel[:len(rel)-len(domain.ExtJS)]
	}
	return domain.TrimSourceExt(rel)
}

func (p *pass) addModule(source, output string) {
	name := moduleName(p.project, source)
	if slices.ContainsFunc(p.result.Modules, func(m domain.ModuleInfo) bool { return m.Name == name }) {
		return
	}
	p.result.Modules = append(p.result.Modules, domain.ModuleInfo{
		Name:     name,
		Source:   source,
		Output:   output,
		Internal: !slices.Contains(strings.Split(name, "/"), domain.NodeModulesDir),
	})
}

func (p *pass) written(name string) {
	p.result.Written = append(p.result.Written, name)
}

func (b *Builder) report(p *pass, diags []domain.Diagnostic) {
	for _, d := range diags {
		p.result.Diagnostics++
		switch d.Severity {
		case domain.SeverityError:
			b.logger.Error(d)
		case domain.SeverityWarning:
			b.logger.Warn(d.String())
		default:
			b.logger.Info(d.String())
		}
	}
}
