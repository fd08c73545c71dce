package domain

import "iter"

// ModuleGraph records which modules each module of a program imports.
type ModuleGraph struct {
	deps  map[string][]string
	added []string
}

// NewModuleGraph creates a new empty ModuleGraph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		deps: make(map[string][]string),
	}
}

// AddModule records a module and its direct dependencies. Re-adding replaces the dependencies.
func (g *ModuleGraph) AddModule(name string, deps []string) {
	if _, exists := g.deps[name]; !exists {
		g.added = append(g.added, name)
	}
	g.deps[name] = deps
}

// Has reports whether the module was added.
func (g *ModuleGraph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Dependencies returns the direct dependencies of a module.
func (g *ModuleGraph) Dependencies(name string) []string {
	return g.deps[name]
}

// Len returns the number of modules.
func (g *ModuleGraph) Len() int {
	return len(g.added)
}

// Walk yields modules with dependencies before dependents. Modules on a cycle
// are yielded in the order the cycle is first entered. Traversal starts from
// modules in the order they were added, so the result is deterministic.
func (g *ModuleGraph) Walk() iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make(map[string]bool, len(g.added))
		var visit func(u string) bool
		visit = func(u string) bool {
			visited[u] = true
			for _, dep := range g.deps[u] {
				if _, known := g.deps[dep]; !known || visited[dep] {
					continue
				}
				if !visit(dep) {
					return false
				}
			}
			return yield(u)
		}
		for _, name := range g.added {
			if !visited[name] && !visit(name) {
				return
			}
		}
	}
}

// Cycles returns the modules that can reach themselves through their dependencies.
func (g *ModuleGraph) Cycles() []string {
	var out []string
	for _, start := range g.added {
		seen := make(map[string]bool)
		stack := append([]string(nil), g.deps[start]...)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if u == start {
				out = append(out, start)
				break
			}
			if seen[u] {
				continue
			}
			seen[u] = true
			stack = append(stack, g.deps[u]...)
		}
	}
	return out
}
