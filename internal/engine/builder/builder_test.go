package builder_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bb/internal/adapters/fs"
	"go.trai.ch/bb/internal/adapters/telemetry"
	"go.trai.ch/bb/internal/adapters/treesitter"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/bb/internal/core/ports/mocks"
	"go.trai.ch/bb/internal/engine/builder"
	"go.trai.ch/bb/internal/engine/cache"
	"go.trai.ch/bb/internal/engine/resolver"
	"go.trai.ch/bb/internal/engine/sprites"
	"go.uber.org/mock/gomock"
)

const (
	bobrilManifest = `{"name": "bobril", "main": "index.js"}`
	bobrilTypes    = "export declare function sprite(url: string): any;\n"
	bobrilScript   = "exports.sprite = function (url) { return url; };\n"
)

// baseFiles is a program of two entries: main imports util and the framework,
// other imports nothing.
func baseFiles() map[string]string {
	return map[string]string{
		"/p/main.ts":  "import * as b from \"bobril\";\nimport { twice } from \"./util\";\nexport const x = twice(2);\n",
		"/p/util.ts":  "export function twice(n: number): number { return n * 2; }\n",
		"/p/other.ts": "export const y = 1;\n",

		"/p/node_modules/bobril/package.json": bobrilManifest,
		"/p/node_modules/bobril/index.d.ts":   bobrilTypes,
		"/p/node_modules/bobril/index.js":     bobrilScript,
	}
}

type harness struct {
	t       *testing.T
	fs      *fs.MemoryFileSystem
	builder *builder.Builder
	packer  *mocks.MockAtlasPacker
	bundler *mocks.MockBundler
	logger  *mocks.MockLogger

	outputs map[string][]byte
	failOn  map[string]bool
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := fs.NewMemoryFileSystem(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	// Deterministic modification times: add in sorted order.
	for _, name := range slices.Sorted(maps.Keys(files)) {
		m.Add(name, files[name])
	}

	compiler, err := treesitter.New()
	require.NoError(t, err)
	t.Cleanup(compiler.Close)

	c := cache.New(m)
	r, err := resolver.New(c, resolver.DefaultManifestCacheSize)
	require.NoError(t, err)

	h := &harness{
		t:       t,
		fs:      m,
		packer:  mocks.NewMockAtlasPacker(ctrl),
		bundler: mocks.NewMockBundler(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		outputs: make(map[string][]byte),
		failOn:  make(map[string]bool),
	}
	h.builder = builder.New(c, r, compiler, sprites.NewBundle(h.packer), h.bundler, h.logger, telemetry.NewNoopTracer())
	return h
}

func (h *harness) project() *domain.Project {
	return &domain.Project{
		Dir:        "/p",
		Main:       "main.ts",
		Entries:    []string{"other.ts"},
		ModuleKind: domain.ModuleCommonJS,
		WriteFile: func(name string, data []byte) error {
			if h.failOn[name] {
				return errors.New("disk full")
			}
			h.outputs[name] = data
			return nil
		},
	}
}

// compile runs a pass the way the application does: file times are re-probed first.
func (h *harness) compile(project *domain.Project) *domain.BuildResult {
	h.t.Helper()
	h.builder.Invalidate()
	res, err := h.builder.Compile(context.Background(), project)
	require.NoError(h.t, err)
	return res
}

func (h *harness) output(name string) string {
	h.t.Helper()
	data, ok := h.outputs[name]
	require.True(h.t, ok, "missing output %s", name)
	return string(data)
}

func TestCompile_FirstPassEmitsEverything(t *testing.T) {
	h := newHarness(t, baseFiles())

	res := h.compile(h.project())

	assert.False(t, res.UpToDate)
	assert.Equal(t, []string{"util.js", "main.js", "other.js", "node_modules/bobril/index.js"}, res.Written)
	assert.Empty(t, res.Failed)
	assert.Equal(t, bobrilScript, h.output("node_modules/bobril/index.js"))
	assert.Equal(t, "\"use strict\";\n"+
		"Object.defineProperty(exports, \"__esModule\", { value: true });\n"+
		"var b = require(\"bobril\");\n"+
		"var util_1 = require(\"./util\"); var twice = util_1.twice;\n"+
		"const x = twice(2);\n"+
		"exports.x = x;\n", h.output("main.js"))
	assert.Contains(t, h.output("util.js"), "function twice(n) { return n * 2; }")

	assert.Contains(t, res.Modules, domain.ModuleInfo{Name: "main", Source: "/p/main.ts", Output: "main.js", Internal: true})
	assert.Contains(t, res.Modules, domain.ModuleInfo{
		Name:   "node_modules/bobril/index",
		Source: "/p/node_modules/bobril/index.d.ts",
		Output: "node_modules/bobril/index.js",
	})
}

func TestCompile_UnchangedProjectIsNoop(t *testing.T) {
	h := newHarness(t, baseFiles())
	h.compile(h.project())

	res := h.compile(h.project())

	assert.True(t, res.UpToDate)
	assert.Empty(t, res.Written)
}

func TestCompile_ForceRebuildReemitsEverything(t *testing.T) {
	h := newHarness(t, baseFiles())
	h.compile(h.project())

	h.builder.ForceRebuild()
	res := h.compile(h.project())

	assert.False(t, res.UpToDate)
	assert.Equal(t, []string{"util.js", "main.js", "other.js", "node_modules/bobril/index.js"}, res.Written)
}

func TestCompile_TouchedLeafRebuildsDependents(t *testing.T) {
	h := newHarness(t, baseFiles())
	h.compile(h.project())

	h.fs.Touch("/p/util.ts")
	res := h.compile(h.project())

	assert.False(t, res.UpToDate)
	assert.Equal(t, []string{"util.js", "main.js"}, res.Written)

	res = h.compile(h.project())
	assert.True(t, res.UpToDate)
}

func TestCompile_TouchedPrebuiltScriptIsCopiedAgain(t *testing.T) {
	h := newHarness(t, baseFiles())
	h.compile(h.project())

	h.fs.Add("/p/node_modules/bobril/index.js", "exports.sprite = null;\n")
	res := h.compile(h.project())

	// The declaration is unchanged, so no module is re-emitted.
	assert.Equal(t, []string{"node_modules/bobril/index.js"}, res.Written)
	assert.Equal(t, "exports.sprite = null;\n", h.output("node_modules/bobril/index.js"))
}

func TestCompile_UnresolvedImportAbortsPass(t *testing.T) {
	files := baseFiles()
	files["/p/main.ts"] = "import { help } from \"./helper\";\nhelp();\n"
	h := newHarness(t, files)

	res, err := h.builder.Compile(context.Background(), h.project())

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorContains(t, err, domain.ErrModuleNotResolved.Error())
	assert.ErrorContains(t, err, `"./helper"`)
	assert.ErrorContains(t, err, "/p/main.ts")
	assert.Empty(t, h.outputs)
}

func TestCompile_DeclarationWithoutScriptIsUnresolved(t *testing.T) {
	files := baseFiles()
	delete(files, "/p/node_modules/bobril/index.js")
	h := newHarness(t, files)

	_, err := h.builder.Compile(context.Background(), h.project())

	assert.ErrorContains(t, err, domain.ErrModuleNotResolved.Error())
	assert.Empty(t, h.outputs)
}

func TestCompile_PackageMainFallback(t *testing.T) {
	files := baseFiles()
	files["/p/other.ts"] = "import pad from \"left-pad\";\nexport const y = pad(\"a\", 3);\n"
	files["/p/node_modules/left-pad/package.json"] = `{"name": "left-pad", "main": "lib/index.js"}`
	files["/p/node_modules/left-pad/lib/index.ts"] = "export default function pad(s: string, n: number) { return s; }\n"
	h := newHarness(t, files)

	res := h.compile(h.project())

	assert.Contains(t, res.Written, "node_modules/left-pad/lib/index.js")
	assert.Contains(t, res.Modules, domain.ModuleInfo{
		Name:   "node_modules/left-pad/lib/index",
		Source: "/p/node_modules/left-pad/lib/index.ts",
		Output: "node_modules/left-pad/lib/index.js",
	})
}

func TestCompile_MissingEntry(t *testing.T) {
	h := newHarness(t, baseFiles())
	project := h.project()
	project.Main = "absent.ts"

	_, err := h.builder.Compile(context.Background(), project)

	assert.ErrorContains(t, err, domain.ErrEntryNotFound.Error())
}

func TestCompile_Preconditions(t *testing.T) {
	h := newHarness(t, baseFiles())
	project := h.project()
	project.TotalBundle = true
	project.ModuleKind = domain.ModuleES2015

	_, err := h.builder.Compile(context.Background(), project)

	require.ErrorIs(t, err, domain.ErrTotalBundleRequiresCommonJS)
	assert.Empty(t, h.outputs)
	assert.Zero(t, h.fs.Reads("/p/main.ts"))
}

func TestCompile_FailedWriteStaysStale(t *testing.T) {
	h := newHarness(t, baseFiles())
	h.logger.EXPECT().Error(gomock.Any()).Times(1)
	h.failOn["util.js"] = true

	res := h.compile(h.project())
	assert.Equal(t, []string{"/p/util.ts"}, res.Failed)
	assert.Contains(t, res.Written, "main.js")

	delete(h.failOn, "util.js")
	res = h.compile(h.project())

	assert.False(t, res.UpToDate)
	assert.Equal(t, []string{"util.js"}, res.Written)
	assert.Empty(t, res.Failed)
}

func TestCompile_CycleIsRebuiltEveryPass(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/p/main.ts":  "import { b } from \"./b\";\nexport const a = 1;\n",
		"/p/b.ts":     "import { a } from \"./main\";\nexport const b = 2;\n",
		"/p/other.ts": "export const y = 1;\n",
	})
	h.compile(h.project())

	res := h.compile(h.project())

	assert.False(t, res.UpToDate)
	assert.ElementsMatch(t, []string{"b.js", "main.js"}, res.Written)
}

func TestCompile_DiagnosticsAreLogged(t *testing.T) {
	files := baseFiles()
	files["/p/other.ts"] = "export const = ;\n"
	h := newHarness(t, files)
	h.logger.EXPECT().Error(gomock.Cond(func(err error) bool {
		var d domain.Diagnostic
		return errors.As(err, &d) && d.File == "/p/other.ts"
	})).MinTimes(1)

	res := h.compile(h.project())

	assert.Positive(t, res.Diagnostics)
	assert.Contains(t, res.Written, "other.js")
}

func spriteFiles() map[string]string {
	files := baseFiles()
	files["/p/other.ts"] = "import * as b from \"bobril\";\nexport const icon = b.sprite(\"icon.png\");\n"
	return files
}

func iconRequest() domain.SpriteRequest {
	return domain.SpriteRequest{Key: "/p/icon.png"}
}

func TestCompile_SpriteMerge(t *testing.T) {
	h := newHarness(t, spriteFiles())
	h.packer.EXPECT().
		Pack(gomock.Any(), []domain.SpriteRequest{iconRequest()}).
		Return(&domain.Atlas{
			Image:      []byte("atlas"),
			Width:      16,
			Height:     16,
			Placements: map[domain.SpriteRequest]domain.SpritePlacement{iconRequest(): {Width: 16, Height: 16}},
		}, nil).
		Times(1)

	project := h.project()
	project.SpriteMerge = true

	res := h.compile(project)
	assert.True(t, res.AtlasRebuilt)
	assert.Equal(t, "atlas", h.output(domain.SpriteAtlasName))
	assert.Contains(t, h.output("other.js"), "b.spriteb(16, 16, 0, 0)")

	e, ok := h.builder.Cache().Lookup("/p/other.ts", "")
	require.True(t, ok)
	site := e.Source.Site(e.Info.Sprites[0].Site)
	assert.Equal(t, "sprite", site.Method)
	assert.Equal(t, []domain.Arg{{Kind: domain.ArgString, Value: "icon.png", Source: site.Args[0].Source}}, site.Args)
	assert.False(t, e.Source.Modified())

	// An unchanged sprite set reuses the packed layout but still emits every file.
	delete(h.outputs, "other.js")
	res = h.compile(project)
	assert.False(t, res.UpToDate)
	assert.False(t, res.AtlasRebuilt)
	assert.Contains(t, h.output("other.js"), "b.spriteb(16, 16, 0, 0)")
}

func TestCompile_SpriteQueryFailureIsSoft(t *testing.T) {
	h := newHarness(t, spriteFiles())
	h.packer.EXPECT().
		Pack(gomock.Any(), gomock.Any()).
		Return(&domain.Atlas{Image: []byte("atlas"), Placements: map[domain.SpriteRequest]domain.SpritePlacement{}}, nil)
	h.logger.EXPECT().Warn(gomock.Cond(func(msg string) bool {
		return strings.Contains(msg, domain.ErrSpriteNotPacked.Error())
	})).Times(1)

	project := h.project()
	project.SpriteMerge = true
	h.compile(project)

	assert.Contains(t, h.output("other.js"), "b.sprite(\"icon.png\")")
}

func TestCompile_RemapImagesWithoutMerge(t *testing.T) {
	h := newHarness(t, spriteFiles())
	project := h.project()
	project.RemapImage = func(name string) string { return "assets/" + name }

	h.compile(project)

	assert.Contains(t, h.output("other.js"), "b.sprite(\"assets/icon.png\")")
}

func TestCompile_StyleDefRewrites(t *testing.T) {
	src := "import * as b from \"bobril\";\n" +
		"export const header = b.styleDef({ color: \"red\" });\n" +
		"export const named = b.styleDef({}, undefined, \"custom\");\n" +
		"export const child = b.styleDefEx(header, {});\n"

	tests := []struct {
		name string
		mode domain.StyleDefMode
		want []string
	}{
		{
			name: "debug appends derived names",
			mode: domain.StyleDefsDebug,
			want: []string{
				`b.styleDef({ color: "red" }, undefined, "header")`,
				`b.styleDef({}, undefined, "custom")`,
				`b.styleDefEx(header, {}, undefined, "child")`,
			},
		},
		{
			name: "release drops names",
			mode: domain.StyleDefsRelease,
			want: []string{
				`b.styleDef({ color: "red" })`,
				`b.styleDef({}, undefined)`,
				`b.styleDefEx(header, {})`,
			},
		},
		{
			name: "none keeps sources",
			mode: domain.StyleDefsNone,
			want: []string{
				`b.styleDef({ color: "red" })`,
				`b.styleDef({}, undefined, "custom")`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := baseFiles()
			files["/p/other.ts"] = src
			h := newHarness(t, files)
			project := h.project()
			project.StyleDefs = tt.mode

			h.compile(project)

			out := h.output("other.js")
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			e, _ := h.builder.Cache().Lookup("/p/other.ts", "")
			assert.False(t, e.Source.Modified())
		})
	}
}

func TestCompile_Translations(t *testing.T) {
	files := baseFiles()
	files["/p/other.ts"] = "import * as b from \"bobril\";\n" +
		"export const a = b.t(\"Hello\", undefined, \"greeting\");\n" +
		"export const c = b.f(\"{n} items\", { n: 2 });\n" +
		"export const d = b.t(dynamic);\n"
	h := newHarness(t, files)

	var reported []domain.TranslationSite
	ids := map[string]int{"Hello": 7, "{n} items": 8}
	project := h.project()
	project.TranslationReporter = func(s domain.TranslationSite) { reported = append(reported, s) }
	project.TranslationReplacer = func(s domain.TranslationSite) int { return ids[s.Message] }

	h.compile(project)

	require.Len(t, reported, 2)
	assert.Equal(t, "greeting", reported[0].Hint)
	assert.True(t, reported[1].JustFormat)
	out := h.output("other.js")
	assert.Contains(t, out, "b.t(7, undefined)")
	assert.Contains(t, out, "b.f(8, { n: 2 })")
	assert.Contains(t, out, "b.t(dynamic)")
}

func TestCompile_TotalBundle(t *testing.T) {
	h := newHarness(t, baseFiles())
	h.bundler.EXPECT().
		Bundle(gomock.Any(), "main", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, modules []ports.BundleModule) ([]byte, error) {
			names := make([]string, 0, len(modules))
			for _, m := range modules {
				names = append(names, m.Name)
			}
			assert.Equal(t, []string{"node_modules/bobril/index", "util", "main", "other"}, names)
			assert.Equal(t, map[string]string{"bobril": "node_modules/bobril/index", "./util": "util"}, modules[2].Requires)
			assert.Equal(t, bobrilScript, string(modules[0].Code))
			return []byte("bundle"), nil
		}).
		Times(1)

	project := h.project()
	project.TotalBundle = true

	res := h.compile(project)
	assert.Contains(t, res.Written, domain.DefaultBundleName)
	assert.Equal(t, "bundle", h.output(domain.DefaultBundleName))

	// Nothing changed, so the bundle is not rebuilt.
	res = h.compile(project)
	assert.True(t, res.UpToDate)
}

func TestCompile_BundleFailure(t *testing.T) {
	h := newHarness(t, baseFiles())
	gomock.InOrder(
		h.bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom")),
		h.bundler.EXPECT().Bundle(gomock.Any(), "main", gomock.Any()).Return([]byte("bundle"), nil),
	)

	project := h.project()
	project.TotalBundle = true
	_, err := h.builder.Compile(context.Background(), project)
	assert.ErrorContains(t, err, domain.ErrBundleFailed.Error())

	// Every module is fresh, yet the missing bundle keeps the project stale.
	res := h.compile(project)
	assert.False(t, res.UpToDate)
	assert.Contains(t, res.Written, domain.DefaultBundleName)
	assert.Equal(t, "bundle", h.output(domain.DefaultBundleName))

	res = h.compile(project)
	assert.True(t, res.UpToDate)
}

func TestCompile_FailedAtlasWriteIsRetried(t *testing.T) {
	h := newHarness(t, spriteFiles())
	h.packer.EXPECT().
		Pack(gomock.Any(), []domain.SpriteRequest{iconRequest()}).
		Return(&domain.Atlas{
			Image:      []byte("atlas"),
			Placements: map[domain.SpriteRequest]domain.SpritePlacement{iconRequest(): {Width: 16, Height: 16}},
		}, nil).
		Times(2)

	project := h.project()
	project.SpriteMerge = true

	h.failOn[domain.SpriteAtlasName] = true
	h.builder.Invalidate()
	_, err := h.builder.Compile(context.Background(), project)
	require.ErrorContains(t, err, domain.ErrAtlasBuildFailed.Error())

	delete(h.failOn, domain.SpriteAtlasName)
	res := h.compile(project)
	assert.True(t, res.AtlasRebuilt)
	assert.Equal(t, "atlas", h.output(domain.SpriteAtlasName))
	assert.Contains(t, h.output("other.js"), "b.spriteb(16, 16, 0, 0)")

	// Written now, so the layout is reused.
	res = h.compile(project)
	assert.False(t, res.AtlasRebuilt)
}

func TestCompile_CanceledBeforeFirstStage(t *testing.T) {
	h := newHarness(t, baseFiles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.builder.Invalidate()
	_, err := h.builder.Compile(ctx, h.project())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.outputs)
}
