package resolver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bb/internal/adapters/fs"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/engine/cache"
	"go.trai.ch/bb/internal/engine/resolver"
)

func setup(t *testing.T, files map[string]string) (*resolver.Resolver, *fs.MemoryFileSystem) {
	t.Helper()
	m := fs.NewMemoryFileSystem(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	for name, content := range files {
		m.Add(name, content)
	}
	r, err := resolver.New(cache.New(m), resolver.DefaultManifestCacheSize)
	require.NoError(t, err)
	return r, m
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		specifier   string
		containing  string
		want        string
		wantPending []string
	}{
		{
			name:       "relative source",
			files:      map[string]string{"/p/src/util.ts": ""},
			specifier:  "./util",
			containing: "/p/src/app.ts",
			want:       "/p/src/util.ts",
		},
		{
			name:       "relative parent",
			files:      map[string]string{"/p/lib/util.ts": ""},
			specifier:  "../lib/util",
			containing: "/p/src/app.ts",
			want:       "/p/lib/util.ts",
		},
		{
			name:        "relative declaration with prebuilt script",
			files:       map[string]string{"/p/src/legacy.d.ts": "", "/p/src/legacy.js": ""},
			specifier:   "./legacy",
			containing:  "/p/src/app.ts",
			want:        "/p/src/legacy.d.ts",
			wantPending: []string{"/p/src/legacy.js"},
		},
		{
			name:       "flat layout in ancestor",
			files:      map[string]string{"/p/shared.ts": ""},
			specifier:  "shared",
			containing: "/p/src/deep/app.ts",
			want:       "/p/shared.ts",
		},
		{
			name:       "node_modules source",
			files:      map[string]string{"/p/node_modules/bobril.ts": ""},
			specifier:  "bobril",
			containing: "/p/src/app.ts",
			want:       "/p/node_modules/bobril.ts",
		},
		{
			name: "package main field",
			files: map[string]string{
				"/p/node_modules/left-pad/package.json": `{"name":"left-pad","main":"lib/pad.js"}`,
				"/p/node_modules/left-pad/lib/pad.d.ts": "",
				"/p/node_modules/left-pad/lib/pad.js":   "",
			},
			specifier:   "left-pad",
			containing:  "/p/src/app.ts",
			want:        "/p/node_modules/left-pad/lib/pad.d.ts",
			wantPending: []string{"/p/node_modules/left-pad/lib/pad.js"},
		},
		{
			name: "package without main uses index",
			files: map[string]string{
				"/p/node_modules/bobril/package.json": `{"name":"bobril"}`,
				"/p/node_modules/bobril/index.ts":     "",
			},
			specifier:  "bobril",
			containing: "/p/src/app.ts",
			want:       "/p/node_modules/bobril/index.ts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setup(t, tt.files)
			got, err := r.Resolve(tt.specifier, tt.containing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantPending == nil {
				assert.Empty(t, r.PendingScripts())
			} else {
				assert.Equal(t, tt.wantPending, r.PendingScripts())
			}
		})
	}
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		specifier  string
		wantErr    string
		wantDetail []string
	}{
		{
			name:       "relative without source",
			files:      map[string]string{"/p/src/helper.d.ts": ""},
			specifier:  "./helper",
			wantErr:    domain.ErrModuleNotResolved.Error(),
			wantDetail: []string{"helper", "/p/src/app.ts"},
		},
		{
			name:       "unknown package",
			specifier:  "nothing-here",
			wantErr:    domain.ErrModuleNotResolved.Error(),
			wantDetail: []string{"nothing-here"},
		},
		{
			name: "broken manifest",
			files: map[string]string{
				"/p/node_modules/bad/package.json": `{"main": `,
			},
			specifier:  "bad",
			wantErr:    domain.ErrManifestParseFailed.Error(),
			wantDetail: []string{"bad", "/p/src/app.ts"},
		},
		{
			name: "manifest entry missing",
			files: map[string]string{
				"/p/node_modules/gone/package.json": `{"main": "dist/gone.js"}`,
			},
			specifier: "gone",
			wantErr:   domain.ErrModuleNotResolved.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setup(t, tt.files)
			_, err := r.Resolve(tt.specifier, "/p/src/app.ts")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
			for _, d := range tt.wantDetail {
				assert.ErrorContains(t, err, d)
			}
		})
	}
}

func TestResolve_ManifestParsedOnce(t *testing.T) {
	r, m := setup(t, map[string]string{
		"/p/node_modules/lib/package.json": `{"main": "main.js"}`,
		"/p/node_modules/lib/main.ts":      "",
	})

	for range 3 {
		got, err := r.Resolve("lib", "/p/src/app.ts")
		require.NoError(t, err)
		assert.Equal(t, "/p/node_modules/lib/main.ts", got)
	}
	assert.Equal(t, 1, m.Reads("/p/node_modules/lib/package.json"))
}

func TestResolve_PendingRegisteredOnce(t *testing.T) {
	r, _ := setup(t, map[string]string{"/p/src/legacy.d.ts": "", "/p/src/legacy.js": ""})

	_, err := r.Resolve("./legacy", "/p/src/a.ts")
	require.NoError(t, err)
	_, err = r.Resolve("./legacy", "/p/src/b.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/src/legacy.js"}, r.PendingScripts())
}

func TestParseManifest(t *testing.T) {
	m, err := resolver.ParseManifest([]byte(`{"name":"x","main":" lib/x.js "}`))
	require.NoError(t, err)
	assert.Equal(t, "lib/x.js", m.Entry(domain.DefaultPackageMain))

	m, err = resolver.ParseManifest([]byte(`{"name":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "index.js", m.Entry(domain.DefaultPackageMain))

	_, err = resolver.ParseManifest([]byte(`nope`))
	assert.Error(t, err)
}
