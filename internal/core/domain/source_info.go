package domain

// Dependency is an import specifier and the absolute path it resolved to.
type Dependency struct {
	Specifier string
	Resolved  string
}

// SpriteSite is a `b.sprite(name, color?, width?, height?, x?, y?)` reference.
type SpriteSite struct {
	Site     SiteID
	Name     string
	Color    string
	HasColor bool
	Width    int
	Height   int
	X        int
	Y        int
}

// StyleDefSite is a `b.styleDef` or `b.styleDefEx` call.
// Name is derived from the variable or property the result is assigned to.
type StyleDefSite struct {
	Site      SiteID
	Name      string
	UserNamed bool
	IsEx      bool
}

// TranslationSite is a `b.t` or `b.f` call.
type TranslationSite struct {
	Site       SiteID
	Message    string
	Literal    bool
	WithParams bool
	Hint       string
	JustFormat bool
}

// SourceInfo is the result of analyzing a parsed source file.
type SourceInfo struct {
	BobrilNamespace string
	Dependencies    []Dependency
	Sprites         []SpriteSite
	StyleDefs       []StyleDefSite
	Translations    []TranslationSite
	Diagnostics     []Diagnostic
}

// Unresolved returns the dependencies that have no resolved path.
func (i *SourceInfo) Unresolved() []Dependency {
	var out []Dependency
	for _, d := range i.Dependencies {
		if d.Resolved == "" {
			out = append(out, d)
		}
	}
	return out
}
