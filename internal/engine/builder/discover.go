package builder

import (
	"context"
	"fmt"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/engine/cache"
	"go.trai.ch/zerr"
)

// discover reads, parses and analyzes every file reachable from the entries,
// breadth first, and resolves each dependency. An unresolvable specifier aborts
// the pass.
func (b *Builder) discover(_ context.Context, p *pass) error {
	isEntry := make(map[string]bool, len(p.entries))
	for _, entry := range p.entries {
		isEntry[cache.Key(entry)] = true
	}

	queue := append([]string(nil), p.entries...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		key := cache.Key(cache.Resolve(name, ""))
		if _, seen := p.files[key]; seen {
			continue
		}

		e := b.cache.ReadContent(name, "")
		if !e.TextCurrent() {
			if isEntry[key] {
				return zerr.With(domain.ErrEntryNotFound, "path", e.FullName)
			}
			b.logger.Warn(fmt.Sprintf("cannot read %s", e.FullName))
			continue
		}
		if err := b.analyze(e); err != nil {
			return err
		}
		b.report(p, e.Info.Diagnostics)

		deps := make([]string, 0, len(e.Info.Dependencies))
		for i := range e.Info.Dependencies {
			dep := &e.Info.Dependencies[i]
			resolved, err := b.resolver.Resolve(dep.Specifier, e.FullName)
			if err != nil {
				dep.Resolved = ""
				return err
			}
			dep.Resolved = resolved
			deps = append(deps, cache.Key(resolved))
			queue = append(queue, resolved)
		}

		p.files[key] = e
		p.order = append(p.order, key)
		p.graph.AddModule(key, deps)
	}
	return nil
}

// analyze brings the parse tree and analysis of e up to date with its text.
func (b *Builder) analyze(e *domain.CacheEntry) error {
	if !e.SourceCurrent() {
		file, err := b.compiler.Parse(e.FullName, e.Text)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrParseFailed.Error()), "path", e.FullName)
		}
		e.Source = file
		e.ParseTime = e.TextTime
	}
	if !e.InfoCurrent() {
		info, err := b.compiler.Analyze(e.Source)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrParseFailed.Error()), "path", e.FullName)
		}
		e.Info = info
		e.InfoTime = e.CurTime
	}
	return nil
}

// collect registers the sprites of every discovered file and reports
// translatable messages.
func (b *Builder) collect(_ context.Context, p *pass) error {
	project := p.project
	if project.SpriteMerge {
		b.sprites.Clear(false)
	}
	for _, key := range p.order {
		info := p.files[key].Info
		if project.SpriteMerge {
			for _, s := range info.Sprites {
				b.sprites.Add(project.ResourceKey(s.Name), s.Color, s.Width, s.Height, s.X, s.Y)
			}
		}
		if project.TranslationReporter != nil {
			for _, t := range info.Translations {
				if t.Literal {
					project.TranslationReporter(t)
				}
			}
		}
	}
	return nil
}
