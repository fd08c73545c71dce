package builder

import (
	"context"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/bb/internal/engine/mutator"
	"go.trai.ch/zerr"
)

// Method the sprite helper is renamed to once it refers to the packed atlas.
const packedSpriteMethod = "spriteb"

// emitAll emits every stale file, dependencies first. A failing file is logged
// and keeps its previous output time.
func (b *Builder) emitAll(_ context.Context, p *pass) error {
	project := p.project
	b.cache.ClearMaxTimeForDeps()

	for key := range p.graph.Walk() {
		e := p.files[key]
		maxTime := b.cache.MaxTimeForDeps(e.FullName, "", true)

		if e.Source.DeclarationOnly() {
			p.addModule(e.FullName, b.companionOutput(p, e))
			if maxTime.Valid() {
				e.OutputTime = maxTime
			}
			continue
		}

		out := project.RelativeOutput(domain.OutputName(e.FullName))
		p.addModule(e.FullName, out)
		if !b.needsEmit(project, e, maxTime) {
			continue
		}

		code, err := b.emitFile(project, e)
		if err == nil {
			err = project.WriteFile(out, code)
		}
		if err != nil {
			b.logger.Error(err)
			p.result.Failed = append(p.result.Failed, e.FullName)
			continue
		}
		b.outputs[key] = code
		p.written(out)
		if maxTime.Valid() {
			e.OutputTime = maxTime
		}
	}
	return nil
}

func (b *Builder) needsEmit(project *domain.Project, e *domain.CacheEntry, maxTime domain.ModTime) bool {
	if project.SideEffectsActive() || !e.OutputTime.Valid() || maxTime.Stale() {
		return true
	}
	return maxTime > e.OutputTime
}

// companionOutput returns the output name of the prebuilt script backing a
// declaration file, or "" when there is none.
func (b *Builder) companionOutput(p *pass, e *domain.CacheEntry) string {
	js := domain.TrimSourceExt(e.FullName) + domain.ExtJS
	if !b.cache.Exists(js, "") {
		return ""
	}
	return p.project.RelativeOutput(js)
}

// emitFile applies the project's call site rewrites, prints the file and rolls
// the rewrites back, so the cached parse tree keeps matching the file on disk.
func (b *Builder) emitFile(project *domain.Project, e *domain.CacheEntry) ([]byte, error) {
	var code []byte
	err := mutator.Do(e.Source, func(tx *mutator.Transaction) error {
		b.rewrite(project, e, tx)
		var err error
		code, err = b.compiler.Emit(e.Source, ports.EmitOptions{
			Target:     project.Target,
			ModuleKind: project.ModuleKind,
		})
		return err
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEmitFailed.Error()), "path", e.FullName)
	}
	return code, nil
}

func (b *Builder) rewrite(project *domain.Project, e *domain.CacheEntry, tx *mutator.Transaction) {
	info := e.Info

	if project.RemapImage != nil && !project.SpriteMerge {
		for _, s := range info.Sprites {
			if name := project.RemapImage(s.Name); name != s.Name {
				tx.SetArgument(s.Site, 0, domain.StringArg(name))
			}
		}
	}

	if project.SpriteMerge {
		for _, s := range info.Sprites {
			placement, err := b.sprites.Query(project.ResourceKey(s.Name), s.Color, s.Width, s.Height, s.X, s.Y)
			if err != nil {
				b.logger.Warn(zerr.With(err, "path", e.FullName).Error())
				continue
			}
			tx.SetMethodName(s.Site, packedSpriteMethod)
			tx.SetArgument(s.Site, 0, domain.NumberArg(float64(placement.Width)))
			tx.SetArgument(s.Site, 1, domain.NumberArg(float64(placement.Height)))
			tx.SetArgument(s.Site, 2, domain.NumberArg(float64(placement.X)))
			tx.SetArgument(s.Site, 3, domain.NumberArg(float64(placement.Y)))
			tx.SetArgumentCount(s.Site, 4)
		}
	}

	if project.TranslationReplacer != nil {
		for _, t := range info.Translations {
			if !t.Literal {
				continue
			}
			id := project.TranslationReplacer(t)
			tx.SetArgument(t.Site, 0, domain.NumberArg(float64(id)))
			if len(e.Source.Site(t.Site).Args) > 2 {
				tx.SetArgumentCount(t.Site, 2)
			}
		}
	}

	for _, s := range info.StyleDefs {
		ex := 0
		if s.IsEx {
			ex = 1
		}
		switch project.StyleDefs {
		case domain.StyleDefsDebug:
			if s.UserNamed || s.Name == "" {
				continue
			}
			tx.SetArgumentCount(s.Site, 3+ex)
			tx.SetArgument(s.Site, 2+ex, domain.StringArg(s.Name))
		case domain.StyleDefsRelease:
			if len(e.Source.Site(s.Site).Args) > 2+ex {
				tx.SetArgumentCount(s.Site, 2+ex)
			}
		}
	}
}
