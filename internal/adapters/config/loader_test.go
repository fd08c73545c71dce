package config_test

import (
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bb/internal/adapters/config"
	"go.trai.ch/bb/internal/adapters/fs"
	"go.trai.ch/bb/internal/adapters/translation"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	loader  *config.Loader
	out     *fs.MemoryFileSystem
	catalog *translation.Catalog
	logger  *mocks.MockLogger
}

func newHarness(t *testing.T, files fstest.MapFS) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		out:     fs.NewMemoryFileSystem(time.Unix(1_700_000_000, 0)),
		catalog: translation.NewCatalog(),
		logger:  mocks.NewMockLogger(ctrl),
	}
	h.loader = config.NewLoader(config.NewMapFSAdapter("/ws", files), h.out, h.catalog, h.logger)
	return h
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestLoader_Defaults(t *testing.T) {
	h := newHarness(t, fstest.MapFS{
		"bb.yaml": file("version: \"1\"\nmain: src/main.ts\n"),
	})

	p, err := h.loader.Load("/ws", domain.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/ws", p.Dir)
	assert.Equal(t, "src/main.ts", p.Main)
	assert.Equal(t, domain.ModuleCommonJS, p.ModuleKind)
	assert.Equal(t, domain.StyleDefMode(""), p.StyleDefs)
	assert.Nil(t, p.RemapImage)
	assert.Nil(t, p.TranslationReplacer)
	assert.Equal(t, "/ws/dist", p.OutDir)
	assert.Equal(t, []string{"/ws/src/main.ts"}, p.EntryModules())
	require.NoError(t, p.Validate())

	require.NoError(t, p.WriteFile("src/main.js", []byte("x")))
	assert.Equal(t, []string{filepath.Join("/ws", domain.DefaultOutDir, "src/main.js")}, h.out.Writes())
}

func TestLoader_AllOptions(t *testing.T) {
	h := newHarness(t, fstest.MapFS{
		"bb.yaml": file(`
version: "1"
dir: app
main: main.ts
outDir: /out
compilerOptions:
  target: es5
  module: CommonJS
styleDefs: debug
spriteMerge: false
remapImages: assets
totalBundle: true
bundleName: all.js
`),
	})

	p, err := h.loader.Load("/ws", domain.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/ws/app", p.Dir)
	assert.Equal(t, "es5", p.Target)
	assert.Equal(t, domain.ModuleCommonJS, p.ModuleKind)
	assert.Equal(t, domain.StyleDefsDebug, p.StyleDefs)
	assert.True(t, p.TotalBundle)
	assert.Equal(t, "all.js", p.Bundle())
	require.NotNil(t, p.RemapImage)
	assert.Equal(t, "assets/icons/a.png", p.RemapImage("icons/a.png"))

	require.NoError(t, p.WriteFile("main.js", nil))
	assert.Equal(t, []string{"/out/main.js"}, h.out.Writes())
}

func TestLoader_Overrides(t *testing.T) {
	h := newHarness(t, fstest.MapFS{
		"bb.yaml": file("main: main.ts\nstyleDefs: debug\nremapImages: assets\n"),
	})

	p, err := h.loader.Load("/ws", domain.Overrides{
		Main:        "other.ts",
		OutDir:      "build",
		SpriteMerge: true,
		Release:     true,
		TotalBundle: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "other.ts", p.Main)
	assert.True(t, p.SpriteMerge)
	assert.True(t, p.TotalBundle)
	assert.Equal(t, domain.StyleDefsRelease, p.StyleDefs)
	assert.Equal(t, "/ws/assets/a.png", p.RemapImage("a.png"), "merged sprites map to files")

	require.NoError(t, p.WriteFile("main.js", nil))
	assert.Equal(t, []string{"/ws/build/main.js"}, h.out.Writes())
}

func TestLoader_EntryGlobs(t *testing.T) {
	h := newHarness(t, fstest.MapFS{
		"bb.yaml":          file("main: main.ts\nentries:\n  - pages/**/*.ts\n  - extra.ts\n"),
		"pages/a.ts":       file(""),
		"pages/deep/b.tsx": file(""),
		"pages/deep/c.ts":  file(""),
		"pages/types.d.ts": file(""),
		"pages/readme.md":  file(""),
		"other/ignored.ts": file(""),
	})

	p, err := h.loader.Load("/ws", domain.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, []string{"/ws/pages/a.ts", "/ws/pages/deep/c.ts", "extra.ts"}, p.Entries)
}

func TestLoader_BadGlob(t *testing.T) {
	h := newHarness(t, fstest.MapFS{
		"bb.yaml": file("main: main.ts\nentries:\n  - \"pages/[*.ts\"\n"),
	})

	_, err := h.loader.Load("/ws", domain.Overrides{})
	assert.ErrorContains(t, err, domain.ErrEntryGlobFailed.Error())
}

func TestLoader_Discovery(t *testing.T) {
	h := newHarness(t, fstest.MapFS{
		"bb.yaml":         file("main: main.ts\n"),
		"src/deep/x.ts":   file(""),
		"src/deep/y.ts":   file(""),
		"unrelated/z.txt": file(""),
	})

	root, err := h.loader.DiscoverRoot("/ws/src/deep")
	require.NoError(t, err)
	assert.Equal(t, "/ws", root)

	p, err := h.loader.Load("/ws/src/deep", domain.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "/ws", p.Dir)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr error
	}{
		{
			name:    "not found",
			files:   fstest.MapFS{"main.ts": file("")},
			wantErr: domain.ErrConfigNotFound,
		},
		{
			name:    "invalid yaml",
			files:   fstest.MapFS{"bb.yaml": file("main: [unclosed\n")},
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "wrong shape",
			files:   fstest.MapFS{"bb.yaml": file("entries: main.ts\n")},
			wantErr: domain.ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.files)
			_, err := h.loader.Load("/ws", domain.Overrides{})
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoader_UnknownVersionWarns(t *testing.T) {
	h := newHarness(t, fstest.MapFS{"bb.yaml": file("version: \"2\"\nmain: main.ts\n")})
	h.logger.EXPECT().Warn(`/ws/bb.yaml declares version "2", reading it as version 1`)

	_, err := h.loader.Load("/ws", domain.Overrides{})
	require.NoError(t, err)
}

func TestLoader_InvalidModuleKindFailsValidation(t *testing.T) {
	h := newHarness(t, fstest.MapFS{"bb.yaml": file("main: main.ts\ncompilerOptions:\n  module: system\n")})

	p, err := h.loader.Load("/ws", domain.Overrides{})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Validate(), domain.ErrInvalidModuleKind)
}

func TestLoader_Translations(t *testing.T) {
	h := newHarness(t, fstest.MapFS{"bb.yaml": file("main: main.ts\ntranslations: true\n")})
	h.out.Add("/ws/dist/translations.json", `[{"id":3,"message":"Hello"}]`)

	p, err := h.loader.Load("/ws", domain.Overrides{})
	require.NoError(t, err)
	require.NotNil(t, p.TranslationReporter)
	require.NotNil(t, p.TranslationReplacer)
	assert.True(t, p.SideEffectsActive())

	assert.Equal(t, 3, p.TranslationReplacer(domain.TranslationSite{Message: "Hello", Literal: true}))
	assert.Equal(t, 4, p.TranslationReplacer(domain.TranslationSite{Message: "Bye", Literal: true}))
}

func TestLoader_TranslationsCorruptCatalog(t *testing.T) {
	h := newHarness(t, fstest.MapFS{"bb.yaml": file("main: main.ts\ntranslations: true\n")})
	h.out.Add("/ws/dist/translations.json", `{`)

	_, err := h.loader.Load("/ws", domain.Overrides{})
	assert.ErrorContains(t, err, domain.ErrCatalogParseFailed.Error())
}
