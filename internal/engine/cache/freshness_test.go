package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/bb/internal/adapters/fs"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/engine/cache"
)

func TestMaxTimeForDeps(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, m *fs.MemoryFileSystem, c *cache.Cache)
		ignore bool
		want   func(m *fs.MemoryFileSystem, c *cache.Cache) domain.ModTime
	}{
		{
			name:  "absent file",
			setup: func(*testing.T, *fs.MemoryFileSystem, *cache.Cache) {},
			want: func(*fs.MemoryFileSystem, *cache.Cache) domain.ModTime {
				return domain.TimeAbsent
			},
		},
		{
			name: "never emitted",
			setup: func(_ *testing.T, m *fs.MemoryFileSystem, _ *cache.Cache) {
				m.Add("/p/main.ts", "")
			},
			want: func(*fs.MemoryFileSystem, *cache.Cache) domain.ModTime {
				return domain.TimeAlwaysStale
			},
		},
		{
			name: "never emitted ignoring output",
			setup: func(_ *testing.T, m *fs.MemoryFileSystem, _ *cache.Cache) {
				m.Add("/p/main.ts", "")
			},
			ignore: true,
			want: func(_ *fs.MemoryFileSystem, c *cache.Cache) domain.ModTime {
				return c.Stat("/p/main.ts", "").CurTime
			},
		},
		{
			name: "newest dependency wins",
			setup: func(t *testing.T, m *fs.MemoryFileSystem, c *cache.Cache) {
				m.Add("/p/main.ts", "")
				m.Add("/p/view.ts", "")
				m.Add("/p/util.ts", "")
				analyzed(t, c, "/p/main.ts", "/p/view.ts")
				analyzed(t, c, "/p/view.ts", "/p/util.ts")
				analyzed(t, c, "/p/util.ts")
			},
			want: func(_ *fs.MemoryFileSystem, c *cache.Cache) domain.ModTime {
				return c.Stat("/p/util.ts", "").CurTime
			},
		},
		{
			name: "missing dependency poisons",
			setup: func(t *testing.T, m *fs.MemoryFileSystem, c *cache.Cache) {
				m.Add("/p/main.ts", "")
				analyzed(t, c, "/p/main.ts", "/p/gone.ts")
			},
			want: func(*fs.MemoryFileSystem, *cache.Cache) domain.ModTime {
				return domain.TimeAlwaysStale
			},
		},
		{
			name: "unresolved dependency poisons",
			setup: func(t *testing.T, m *fs.MemoryFileSystem, c *cache.Cache) {
				m.Add("/p/main.ts", "")
				e := analyzed(t, c, "/p/main.ts")
				e.Info.Dependencies = []domain.Dependency{{Specifier: "./nowhere"}}
			},
			want: func(*fs.MemoryFileSystem, *cache.Cache) domain.ModTime {
				return domain.TimeAlwaysStale
			},
		},
		{
			name: "stale analysis ignores dependencies",
			setup: func(t *testing.T, m *fs.MemoryFileSystem, c *cache.Cache) {
				m.Add("/p/main.ts", "")
				e := analyzed(t, c, "/p/main.ts", "/p/gone.ts")
				e.InfoTime = domain.TimeUnknown
			},
			want: func(_ *fs.MemoryFileSystem, c *cache.Cache) domain.ModTime {
				return c.Stat("/p/main.ts", "").CurTime
			},
		},
		{
			name: "cycle members are always stale",
			setup: func(t *testing.T, m *fs.MemoryFileSystem, c *cache.Cache) {
				m.Add("/p/main.ts", "")
				m.Add("/p/a.ts", "")
				m.Add("/p/b.ts", "")
				analyzed(t, c, "/p/main.ts", "/p/a.ts")
				analyzed(t, c, "/p/a.ts", "/p/b.ts")
				analyzed(t, c, "/p/b.ts", "/p/a.ts")
			},
			want: func(*fs.MemoryFileSystem, *cache.Cache) domain.ModTime {
				return domain.TimeAlwaysStale
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fs.NewMemoryFileSystem(epoch)
			c := cache.New(m)
			tt.setup(t, m, c)

			got := c.MaxTimeForDeps("/p/main.ts", "", tt.ignore)
			assert.Equal(t, tt.want(m, c), got)
		})
	}
}

func TestMaxTimeForDeps_CycleMarksEveryMember(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	m.Add("/p/a.ts", "")
	m.Add("/p/b.ts", "")
	c := cache.New(m)
	analyzed(t, c, "/p/a.ts", "/p/b.ts")
	analyzed(t, c, "/p/b.ts", "/p/a.ts")

	assert.Equal(t, domain.TimeAlwaysStale, c.MaxTimeForDeps("/p/a.ts", "", false))
	assert.Equal(t, domain.TimeAlwaysStale, c.MaxTimeForDeps("/p/b.ts", "", false))
}

func TestMaxTimeForDeps_Memoized(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	m.Add("/p/main.ts", "")
	m.Add("/p/util.ts", "")
	c := cache.New(m)
	analyzed(t, c, "/p/main.ts", "/p/util.ts")
	util := analyzed(t, c, "/p/util.ts")

	before := c.MaxTimeForDeps("/p/main.ts", "", false)
	assert.Equal(t, util.CurTime, before)

	m.Touch("/p/util.ts")
	c.ClearFileTimeModifications()
	assert.Equal(t, before, c.MaxTimeForDeps("/p/main.ts", "", false), "memoized within a scan")

	c.ClearMaxTimeForDeps()
	after := c.MaxTimeForDeps("/p/main.ts", "", false)
	assert.Greater(t, after, before)
	assert.False(t, c.Fresh("/p/main.ts", "", false))
}

func TestFresh(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	m.Add("/p/main.ts", "")
	m.Add("/p/util.ts", "")
	c := cache.New(m)
	analyzed(t, c, "/p/main.ts", "/p/util.ts")
	analyzed(t, c, "/p/util.ts")

	// main was emitted before util changed.
	assert.False(t, c.Fresh("/p/main.ts", "", false))
	assert.True(t, c.Fresh("/p/util.ts", "", false))

	c.ClearMaxTimeForDeps()
	c.Stat("/p/main.ts", "").OutputTime = c.Stat("/p/util.ts", "").CurTime
	assert.True(t, c.Fresh("/p/main.ts", "", false))
}
