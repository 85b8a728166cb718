package registry

import "sort"

// Edge is one dependency relation: From must be initialized before To.
type Edge struct {
	From string `json:"from"` // the dependency
	To   string `json:"to"`   // the dependent
}

// Graph is a point-in-time view of the registered services and their
// declared dependencies, suitable for visualization and diagnostics. Edges
// may reference unregistered dependency names; that is itself useful
// diagnostic signal.
type Graph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// DependencyGraph derives the current dependency graph. It is purely a read;
// no registry state is mutated.
func (r *Registry) DependencyGraph() Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g := Graph{Nodes: make([]string, 0, len(r.services))}
	for name := range r.services {
		g.Nodes = append(g.Nodes, name)
	}
	sort.Strings(g.Nodes)

	for _, name := range g.Nodes {
		for _, dep := range r.services[name].record.Dependencies {
			g.Edges = append(g.Edges, Edge{From: dep, To: name})
		}
	}
	return g
}
