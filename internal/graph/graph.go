// # internal/graph/graph.go
package graph

import (
	"sort"
	"sync"
)

// Graph holds the component hierarchy and the integration edges between its
// members. All mutation goes through the methods below; read accessors return
// copies so callers can iterate without holding the lock.
type Graph struct {
	mu         sync.RWMutex
	registry   *Registry
	components map[ComponentID]*Component
	children   map[ComponentID][]ComponentID
	edges      []Edge
}

func New() *Graph {
	return &Graph{
		registry:   NewRegistry(),
		components: make(map[ComponentID]*Component),
		children:   make(map[ComponentID][]ComponentID),
	}
}

func (g *Graph) Registry() *Registry { return g.registry }

// AddComponent registers c.FQN and stores the component under the resulting
// id. Re-adding an existing FQN returns the original id; the latest
// definition wins, and the shadowed definition's span moves into the
// Redefined history.
func (g *Graph) AddComponent(c *Component) (ComponentID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := g.registry.GetOrCreate(c.FQN)
	if err != nil {
		return Unresolved, err
	}
	if existing, ok := g.components[id]; ok {
		existing.Redefined = append(existing.Redefined, existing.Span)
		existing.Span = c.Span
		existing.Kind = c.Kind
		existing.Docstring = c.Docstring
		existing.Bases = c.Bases
		return id, nil
	}
	c.ID = id
	g.components[id] = c
	if c.Parent != Unresolved {
		g.children[c.Parent] = append(g.children[c.Parent], id)
	}
	return id, nil
}

// PromoteModule upgrades a synthesized package node to the module defined by
// its directory's init file, without recording a redefinition.
func (g *Graph) PromoteModule(id ComponentID, path, docstring string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.components[id]
	if !ok || c.Kind != KindPackage {
		return
	}
	c.Kind = KindModule
	c.Path = path
	c.Docstring = docstring
}

func (g *Graph) AddEdge(e Edge) {
	g.mu.Lock()
	g.edges = append(g.edges, e)
	g.mu.Unlock()
}

func (g *Graph) Component(id ComponentID) (*Component, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.components[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// ByFQN resolves a name to its component in one step.
func (g *Graph) ByFQN(fqn string) (*Component, bool) {
	id, ok := g.registry.Lookup(fqn)
	if !ok {
		return nil, false
	}
	return g.Component(id)
}

// Children returns the direct children of id in insertion order.
func (g *Graph) Children(id ComponentID) []ComponentID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ComponentID, len(g.children[id]))
	copy(out, g.children[id])
	return out
}

// Components returns all components sorted by FQN.
func (g *Graph) Components() []*Component {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Component, 0, len(g.components))
	for _, c := range g.components {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FQN < out[j].FQN })
	return out
}

// Roots returns the components with no parent, sorted by FQN.
func (g *Graph) Roots() []*Component {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Component, 0)
	for _, c := range g.components {
		if c.Parent == Unresolved {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FQN < out[j].FQN })
	return out
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) ComponentCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.components)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}
