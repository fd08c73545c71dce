package builder

import (
	"context"
	"fmt"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
)

// buildAtlas repacks the sprite atlas when the requested set changed and writes it.
func (b *Builder) buildAtlas(ctx context.Context, p *pass) error {
	if !p.project.SpriteMerge || !b.sprites.WasChanged() {
		return nil
	}
	if _, err := b.sprites.Build(ctx); err != nil {
		return err
	}
	if err := p.project.WriteFile(domain.SpriteAtlasName, b.sprites.Image()); err != nil {
		return zerr.Wrap(err, domain.ErrAtlasBuildFailed.Error())
	}
	b.sprites.Commit()
	p.result.AtlasRebuilt = true
	p.written(domain.SpriteAtlasName)
	return nil
}

// copyScripts copies the prebuilt scripts backing declaration-only modules
// whenever they changed since their last copy.
func (b *Builder) copyScripts(_ context.Context, p *pass) error {
	for _, script := range b.resolver.PendingScripts() {
		e := b.cache.ReadContent(script, "")
		if !e.TextCurrent() {
			b.logger.Warn(fmt.Sprintf("prebuilt script %s vanished", script))
			continue
		}
		b.outputs[e.Key] = e.Text
		if e.OutputTime.Valid() && e.CurTime <= e.OutputTime {
			continue
		}
		out := p.project.RelativeOutput(e.FullName)
		if err := p.project.WriteFile(out, e.Text); err != nil {
			b.logger.Error(err)
			p.result.Failed = append(p.result.Failed, e.FullName)
			continue
		}
		e.OutputTime = e.CurTime
		p.written(out)
	}
	return nil
}

// bundle concatenates every module of the program, dependencies first, into
// the total bundle. It runs when any module was written or no bundle exists yet.
func (b *Builder) bundle(ctx context.Context, p *pass) error {
	project := p.project
	if !project.TotalBundle || b.bundled && len(p.result.Written) == 0 {
		return nil
	}

	var modules []ports.BundleModule
	for key := range p.graph.Walk() {
		e := p.files[key]
		codeKey := key
		if e.Source.DeclarationOnly() {
			js, ok := b.cache.Lookup(domain.TrimSourceExt(e.FullName)+domain.ExtJS, "")
			if !ok {
				continue
			}
			codeKey = js.Key
		}
		code, ok := b.outputs[codeKey]
		if !ok {
			continue
		}
		requires := make(map[string]string, len(e.Info.Dependencies))
		for _, dep := range e.Info.Dependencies {
			requires[dep.Specifier] = moduleName(project, dep.Resolved)
		}
		modules = append(modules, ports.BundleModule{
			Name:     moduleName(project, e.FullName),
			Code:     code,
			Requires: requires,
		})
	}

	code, err := b.bundler.Bundle(ctx, moduleName(project, p.entries[0]), modules)
	if err != nil {
		return zerr.Wrap(err, domain.ErrBundleFailed.Error())
	}
	if err := project.WriteFile(project.Bundle(), code); err != nil {
		return zerr.Wrap(err, domain.ErrBundleFailed.Error())
	}
	b.bundled = true
	p.written(project.Bundle())
	return nil
}
