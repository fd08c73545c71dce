package treesitter

import (
	"slices"

	"go.trai.ch/bb/internal/core/domain"
)

// Analyze extracts dependencies and framework call sites from a parsed file.
// Only calls made through the namespace the framework module is imported as are considered.
func (c *Compiler) Analyze(file *domain.SourceFile) (*domain.SourceInfo, error) {
	info := &domain.SourceInfo{Diagnostics: slices.Clone(file.Diagnostics)}

	seen := make(map[string]bool, len(file.Imports))
	for _, imp := range file.Imports {
		if imp.Specifier == domain.BobrilModule && imp.Namespace != "" && info.BobrilNamespace == "" {
			info.BobrilNamespace = imp.Namespace
		}
		if seen[imp.Specifier] {
			continue
		}
		seen[imp.Specifier] = true
		info.Dependencies = append(info.Dependencies, domain.Dependency{Specifier: imp.Specifier})
	}
	if info.BobrilNamespace == "" {
		return info, nil
	}

	for i := range file.Sites {
		site := &file.Sites[i]
		if site.Receiver != info.BobrilNamespace {
			continue
		}
		switch site.Method {
		case "sprite":
			if s, ok := spriteSite(site); ok {
				info.Sprites = append(info.Sprites, s)
			}
		case "styleDef", "styleDefEx":
			info.StyleDefs = append(info.StyleDefs, styleDefSite(site))
		case "t", "f":
			info.Translations = append(info.Translations, translationSite(site))
		}
	}
	return info, nil
}

func spriteSite(site *domain.CallSite) (domain.SpriteSite, bool) {
	if len(site.Args) == 0 || site.Args[0].Kind != domain.ArgString {
		return domain.SpriteSite{}, false
	}
	s := domain.SpriteSite{Site: site.ID, Name: site.Args[0].Value}
	if len(site.Args) > 1 && site.Args[1].Kind == domain.ArgString {
		s.Color = site.Args[1].Value
		s.HasColor = true
	}
	dims := []*int{&s.Width, &s.Height, &s.X, &s.Y}
	for i, dst := range dims {
		if arg := argAt(site, 2+i); arg.Kind == domain.ArgNumber {
			*dst = int(arg.Number)
		}
	}
	return s, true
}

func styleDefSite(site *domain.CallSite) domain.StyleDefSite {
	ex := 0
	if site.Method == "styleDefEx" {
		ex = 1
	}
	s := domain.StyleDefSite{Site: site.ID, Name: site.Binding, IsEx: ex == 1}
	if len(site.Args) > 2+ex {
		s.UserNamed = true
		if name := site.Args[2+ex]; name.Kind == domain.ArgString {
			s.Name = name.Value
		}
	}
	return s
}

func translationSite(site *domain.CallSite) domain.TranslationSite {
	s := domain.TranslationSite{Site: site.ID, JustFormat: site.Method == "f"}
	if msg := argAt(site, 0); msg.Kind == domain.ArgString {
		s.Message = msg.Value
		s.Literal = true
	}
	if params := argAt(site, 1); len(site.Args) > 1 && params.Kind != domain.ArgUndefined && params.Value != "null" {
		s.WithParams = true
	}
	if hint := argAt(site, 2); hint.Kind == domain.ArgString {
		s.Hint = hint.Value
	}
	return s
}

func argAt(site *domain.CallSite, i int) domain.Arg {
	if i < len(site.Args) {
		return site.Args[i]
	}
	return domain.UndefinedArg()
}
