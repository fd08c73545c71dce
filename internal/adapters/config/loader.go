// Package config loads bb.yaml into a domain.Project.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	bbfs "go.trai.ch/bb/internal/adapters/fs"     //nolint:depguard // Outputs go through the writer
	"go.trai.ch/bb/internal/adapters/translation" //nolint:depguard // Catalog hooks are bound here
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// supportedVersion is the only bb.yaml schema version.
const supportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Files   FileSystem
	Out     ports.FileSystem
	Catalog *translation.Catalog
	Logger  ports.Logger
}

// NewLoader creates a Loader. Project files are read from files; outputs and
// the stored message catalog go through out.
func NewLoader(files FileSystem, out ports.FileSystem, catalog *translation.Catalog, logger ports.Logger) *Loader {
	return &Loader{Files: files, Out: out, Catalog: catalog, Logger: logger}
}

// DiscoverRoot returns the directory of the nearest bb.yaml at or above cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

// Load reads the nearest bb.yaml and builds the project it describes.
func (l *Loader) Load(cwd string, overrides domain.Overrides) (*domain.Project, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var file Projectfile
	if err := l.readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, reading it as version %s", configPath, file.Version, supportedVersion))
	}

	dir := resolveDir(filepath.Dir(configPath), file.Dir)

	entries, err := l.expandEntries(dir, file.Entries)
	if err != nil {
		return nil, err
	}

	outDir := resolveDir(dir, firstOf(overrides.OutDir, file.OutDir, domain.DefaultOutDir))
	writer := bbfs.NewOutputWriter(l.Out, outDir)

	project := &domain.Project{
		Dir:         dir,
		Main:        firstOf(overrides.Main, file.Main),
		Entries:     entries,
		Target:      file.CompilerOptions.Target,
		ModuleKind:  domain.ModuleKind(strings.ToLower(firstOf(file.CompilerOptions.Module, string(domain.ModuleCommonJS)))),
		StyleDefs:   domain.StyleDefMode(strings.ToLower(file.StyleDefs)),
		SpriteMerge: file.SpriteMerge || overrides.SpriteMerge,
		TotalBundle: file.TotalBundle || overrides.TotalBundle,
		BundleName:  file.BundleName,
		WriteFile:   writer.WriteFile,
		OutDir:      outDir,
	}
	if overrides.Release {
		project.StyleDefs = domain.StyleDefsRelease
	}

	if file.RemapImages != "" {
		project.RemapImage = remapper(dir, file.RemapImages, project.SpriteMerge)
	}

	if file.Translations {
		if err := l.loadCatalog(outDir); err != nil {
			return nil, err
		}
		project.TranslationReporter = l.Catalog.Report
		project.TranslationReplacer = l.Catalog.Replace
	}

	return project, nil
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	dir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := l.Files.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
		}
		dir = parent
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Projectfile) error {
	data, err := l.Files.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

// expandEntries expands glob patterns below dir. Plain names are kept as
// written so a missing entry is reported by the build.
func (l *Loader) expandEntries(dir string, patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, pattern)
			continue
		}
		matches, err := l.Files.Glob(dir, filepath.ToSlash(pattern))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryGlobFailed.Error()), "pattern", pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if domain.IsDeclarationFile(m) || !isSource(m) {
				continue
			}
			out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}
	return out, nil
}

func (l *Loader) loadCatalog(outDir string) error {
	catalogPath := filepath.Join(outDir, domain.TranslationsName)
	data, err := l.Out.ReadFile(catalogPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", catalogPath)
	}
	if err := l.Catalog.Load(data); err != nil {
		return zerr.With(err, "path", catalogPath)
	}
	return nil
}

// remapper maps sprite names below prefix. Merged sprites are loaded by the
// packer, so they map to files; otherwise the result is the name emitted
// into the code.
func remapper(dir, prefix string, merged bool) func(string) string {
	prefix = filepath.ToSlash(prefix)
	return func(name string) string {
		remapped := path.Join(prefix, filepath.ToSlash(name))
		if merged {
			return filepath.Join(dir, filepath.FromSlash(remapped))
		}
		return remapped
	}
}

func isSource(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == domain.ExtTS || ext == domain.ExtTSX
}

// resolveDir resolves configured relative to base.
func resolveDir(base, configured string) string {
	if configured == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(base, configured)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
