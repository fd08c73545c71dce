package cache

import "go.trai.ch/bb/internal/core/domain"

// MaxTimeForDeps returns the newest modification time of name and everything it
// transitively depends on, as far as current analysis results know.
//
// The result is TimeAbsent when the file does not exist and TimeAlwaysStale when
// it has never been emitted (unless ignoreMissingOutput is set), when any
// dependency is absent, stale or unresolved, or when the file is part of a
// dependency cycle. Results are memoized until ClearMaxTimeForDeps; mixing
// values of ignoreMissingOutput within one scan is not supported.
func (c *Cache) MaxTimeForDeps(name, baseDir string, ignoreMissingOutput bool) domain.ModTime {
	return c.maxTimeForDeps(c.Stat(name, baseDir), ignoreMissingOutput)
}

func (c *Cache) maxTimeForDeps(e *domain.CacheEntry, ignoreMissingOutput bool) domain.ModTime {
	if c.visiting[e.Key] {
		return domain.TimeAlwaysStale
	}
	if e.MaxTimeForDeps.Known() {
		return e.MaxTimeForDeps
	}
	c.probe(e)
	if !e.Exists() {
		e.MaxTimeForDeps = domain.TimeAbsent
		return e.MaxTimeForDeps
	}
	if !ignoreMissingOutput && !e.OutputTime.Valid() {
		e.MaxTimeForDeps = domain.TimeAlwaysStale
		return e.MaxTimeForDeps
	}

	result := e.CurTime
	if e.InfoCurrent() {
		c.visiting[e.Key] = true
		for _, dep := range e.Info.Dependencies {
			if dep.Resolved == "" {
				result = domain.TimeAlwaysStale
				break
			}
			t := c.maxTimeForDeps(c.Entry(dep.Resolved, ""), ignoreMissingOutput)
			if t.Stale() {
				result = domain.TimeAlwaysStale
				break
			}
			if t > result {
				result = t
			}
		}
		delete(c.visiting, e.Key)
	}
	e.MaxTimeForDeps = result
	return result
}

// Fresh reports whether the emitted output of name is at least as new as the
// file and all its dependencies. It uses the memoized scan of MaxTimeForDeps.
func (c *Cache) Fresh(name, baseDir string, ignoreMissingOutput bool) bool {
	e := c.Stat(name, baseDir)
	t := c.maxTimeForDeps(e, ignoreMissingOutput)
	return t.Valid() && e.OutputTime.Valid() && t <= e.OutputTime
}
