// Package resolver maps import specifiers to source files.
package resolver

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/engine/cache"
	"go.trai.ch/zerr"
)

// DefaultManifestCacheSize bounds the number of parsed package.json files kept.
const DefaultManifestCacheSize = 512

// Resolver resolves specifiers against the build cache. Declaration-only
// modules backed by a prebuilt script register that script for copying.
type Resolver struct {
	cache     *cache.Cache
	manifests *lru.Cache[string, *Manifest]
	pending   map[string]string
	order     []string
}

// New creates a Resolver keeping up to size parsed manifests.
func New(c *cache.Cache, size int) (*Resolver, error) {
	manifests, err := lru.New[string, *Manifest](size)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		cache:     c,
		manifests: manifests,
		pending:   make(map[string]string),
	}, nil
}

// Resolve returns the absolute path of the source file specifier refers to
// from containingFile.
func (r *Resolver) Resolve(specifier, containingFile string) (string, error) {
	dir := filepath.Dir(containingFile)

	if strings.HasPrefix(specifier, ".") {
		if found, ok := r.trySource(filepath.Join(dir, specifier)); ok {
			return found, nil
		}
		return "", notResolved(specifier, containingFile)
	}

	for d := range ancestors(dir) {
		if found, ok := r.trySource(filepath.Join(d, specifier)); ok {
			return found, nil
		}
		if found, ok := r.trySource(filepath.Join(d, domain.NodeModulesDir, specifier)); ok {
			return found, nil
		}
	}

	for d := range ancestors(dir) {
		pkgDir := filepath.Join(d, domain.NodeModulesDir, specifier)
		manifestPath := filepath.Join(pkgDir, domain.PackageManifest)
		if !r.cache.Exists(manifestPath, "") {
			continue
		}
		m, err := r.manifest(manifestPath, specifier, containingFile)
		if err != nil {
			return "", err
		}
		entry := trimScriptExt(m.Entry(domain.DefaultPackageMain))
		if found, ok := r.trySource(filepath.Join(pkgDir, filepath.FromSlash(entry))); ok {
			return found, nil
		}
		break
	}

	return "", notResolved(specifier, containingFile)
}

// trySource looks for base.ts, then base.d.ts paired with base.js.
func (r *Resolver) trySource(base string) (string, bool) {
	base = domain.TrimSourceExt(base)
	if ts := base + domain.ExtTS; r.cache.Exists(ts, "") {
		return ts, true
	}
	dts := base + domain.ExtDTS
	js := base + domain.ExtJS
	if r.cache.Exists(dts, "") && r.cache.Exists(js, "") {
		r.register(js)
		return dts, true
	}
	return "", false
}

func (r *Resolver) register(js string) {
	key := cache.Key(js)
	if _, ok := r.pending[key]; ok {
		return
	}
	r.pending[key] = js
	r.order = append(r.order, key)
}

func (r *Resolver) manifest(path, specifier, containingFile string) (*Manifest, error) {
	e := r.cache.ReadContent(path, "")
	if !e.TextCurrent() {
		err := zerr.Wrap(domain.ErrManifestReadFailed, fmt.Sprintf("%s (imported as %q from %s)", path, specifier, containingFile))
		return nil, zerr.With(err, "path", path)
	}
	key := e.Key + "@" + e.TextTime.String()
	if m, ok := r.manifests.Get(key); ok {
		return m, nil
	}
	m, err := ParseManifest(e.Text)
	if err != nil {
		wrapped := zerr.Wrap(err, fmt.Sprintf("%s: %s (imported as %q from %s)",
			domain.ErrManifestParseFailed.Error(), path, specifier, containingFile))
		return nil, zerr.With(wrapped, "path", path)
	}
	r.manifests.Add(key, m)
	return m, nil
}

// PendingScripts returns the prebuilt scripts registered for copying, in registration order.
func (r *Resolver) PendingScripts() []string {
	out := make([]string, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.pending[k])
	}
	return out
}

func notResolved(specifier, containingFile string) error {
	err := zerr.Wrap(domain.ErrModuleNotResolved, fmt.Sprintf("cannot resolve %q from %s", specifier, containingFile))
	return zerr.With(zerr.With(err, "specifier", specifier), "file", containingFile)
}

// ancestors yields dir and each of its parents up to the file system root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}
