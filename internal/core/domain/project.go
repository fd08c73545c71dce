package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// ModuleKind is the module format of emitted JavaScript.
type ModuleKind string

const (
	// ModuleCommonJS emits require/exports modules.
	ModuleCommonJS ModuleKind = "commonjs"
	// ModuleES2015 emits ECMAScript modules.
	ModuleES2015 ModuleKind = "es2015"
	// ModuleAMD emits define() modules.
	ModuleAMD ModuleKind = "amd"
	// ModuleUMD emits universal modules.
	ModuleUMD ModuleKind = "umd"
)

// Valid reports whether k is a supported module kind.
func (k ModuleKind) Valid() bool {
	switch k {
	case ModuleCommonJS, ModuleES2015, ModuleAMD, ModuleUMD:
		return true
	default:
		return false
	}
}

// StyleDefMode selects how style definition call sites are rewritten.
type StyleDefMode string

const (
	// StyleDefsNone leaves style definitions untouched.
	StyleDefsNone StyleDefMode = "none"
	// StyleDefsDebug appends a derived class name to unnamed definitions.
	StyleDefsDebug StyleDefMode = "debug"
	// StyleDefsRelease strips explicit names from definitions.
	StyleDefsRelease StyleDefMode = "release"
)

// Valid reports whether m is a supported mode. The empty mode means none.
func (m StyleDefMode) Valid() bool {
	switch m {
	case "", StyleDefsNone, StyleDefsDebug, StyleDefsRelease:
		return true
	default:
		return false
	}
}

// Project is the build description handed to a compile pass.
type Project struct {
	// Dir is the absolute project root. Output names are relative to it.
	Dir string
	// Main is the primary entry module.
	Main string
	// Entries are additional entry modules.
	Entries []string

	Target     string
	ModuleKind ModuleKind
	StyleDefs  StyleDefMode

	// SpriteMerge packs every referenced sprite into a single atlas.
	SpriteMerge bool
	// RemapImage maps a sprite name to the resource key used for lookup and output.
	RemapImage func(name string) string

	TranslationReporter func(TranslationSite)
	TranslationReplacer func(TranslationSite) int

	// TotalBundle concatenates all emitted modules into BundleName.
	TotalBundle bool
	BundleName  string

	// WriteFile receives every output, named relative to Dir with forward slashes.
	WriteFile func(name string, data []byte) error
	// OutDir is where WriteFile places outputs. Changes below it are not sources.
	OutDir string
}

// EntryModules returns the absolute paths of Main followed by Entries, without duplicates.
func (p *Project) EntryModules() []string {
	out := make([]string, 0, len(p.Entries)+1)
	add := func(name string) {
		if name == "" {
			return
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(p.Dir, name)
		}
		name = filepath.Clean(name)
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	add(p.Main)
	for _, e := range p.Entries {
		add(e)
	}
	return out
}

// SideEffectsActive reports whether a global side pipeline forces every file to be emitted.
func (p *Project) SideEffectsActive() bool {
	return p.SpriteMerge || p.TranslationReplacer != nil
}

// Bundle returns the output name of the total bundle.
func (p *Project) Bundle() string {
	if p.BundleName == "" {
		return DefaultBundleName
	}
	return p.BundleName
}

// Validate checks the preconditions of a compile pass.
func (p *Project) Validate() error {
	if len(p.EntryModules()) == 0 {
		return ErrNoEntryModules
	}
	if !p.StyleDefs.Valid() {
		return ErrInvalidStyleDefs
	}
	if p.ModuleKind != "" && !p.ModuleKind.Valid() {
		return ErrInvalidModuleKind
	}
	if p.TotalBundle && p.ModuleKind != ModuleCommonJS {
		return ErrTotalBundleRequiresCommonJS
	}
	return nil
}

// ResourceKey returns the cache key of a sprite name referenced from this project.
func (p *Project) ResourceKey(name string) string {
	if p.RemapImage != nil {
		return p.RemapImage(name)
	}
	return filepath.Join(p.Dir, name)
}

// RelativeOutput normalizes an output path to a forward-slash name relative to Dir.
func (p *Project) RelativeOutput(name string) string {
	if filepath.IsAbs(name) {
		if rel, err := filepath.Rel(p.Dir, name); err == nil {
			name = rel
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(name)), "./")
}

// ModuleInfo describes one module of a finished pass.
type ModuleInfo struct {
	// Name is the module name, the output path without extension.
	Name string
	// Source is the absolute path of the source file.
	Source string
	// Output is the emitted file relative to the project root. Empty for declarations.
	Output string
	// Internal is true for modules inside the project rather than a package directory.
	Internal bool
}

// BuildResult summarizes a compile pass.
type BuildResult struct {
	UpToDate bool
	Written  []string

	// Failed lists sources whose emission failed; they stay stale.
	Failed       []string
	Modules      []ModuleInfo
	AtlasRebuilt bool
	Diagnostics  int
}

// Overrides are command line values that take precedence over the project file.
// Zero values leave the file setting in place.
type Overrides struct {
	Main        string
	OutDir      string
	SpriteMerge bool
	Release     bool
	TotalBundle bool
}
