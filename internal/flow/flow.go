// # internal/flow/flow.go

// Package flow implements whole-program synthesis over the collected edge
// set: module-boundary crossroads and call-graph critical paths. Everything
// here is derived fresh from the edges on every run and sorted before being
// returned, so identical edge sets produce byte-identical output.
package flow

import (
	"sort"
	"strings"

	"intmap/internal/graph"
)

// Crossroad aggregates the integration traffic between two module-level
// boundaries.
type Crossroad struct {
	ID           string
	Components   [2]string
	ComponentIDs [2]graph.ComponentID
	EdgeCount    int
	Kinds        []string
	Criticality  string
}

// CriticalPath marks a high fan-in entry point of the call-only subgraph.
type CriticalPath struct {
	ID         string
	EntryPoint string
	EntryID    graph.ComponentID
	CallCount  int
	Complexity string
}

type Analyzer struct {
	graph            *graph.Graph
	boundarySegments int
	topK             int
}

func NewAnalyzer(g *graph.Graph, boundarySegments, topK int) *Analyzer {
	return &Analyzer{graph: g, boundarySegments: boundarySegments, topK: topK}
}

func (a *Analyzer) Analyze() ([]Crossroad, []CriticalPath) {
	return a.crossroads(), a.criticalPaths()
}

// boundaryKey maps a component to its module-level boundary: first the
// enclosing module (or package) via the containment chain, then truncation
// to the configured number of leading path segments. The truncation of a
// module FQN is itself a registered package or module FQN.
func (a *Analyzer) boundaryKey(id graph.ComponentID) string {
	fqn := a.moduleFQN(id)
	if fqn == "" {
		return ""
	}
	parts := strings.Split(fqn, ".")
	if len(parts) > a.boundarySegments {
		parts = parts[:a.boundarySegments]
	}
	return strings.Join(parts, ".")
}

func (a *Analyzer) moduleFQN(id graph.ComponentID) string {
	for id != graph.Unresolved {
		c, ok := a.graph.Component(id)
		if !ok {
			return ""
		}
		if c.Kind == graph.KindModule || c.Kind == graph.KindPackage {
			return c.FQN
		}
		id = c.Parent
	}
	return ""
}

type pairKey struct {
	a, b string
}

func (a *Analyzer) crossroads() []Crossroad {
	counts := make(map[pairKey]int)
	kinds := make(map[pairKey]map[string]struct{})

	for _, e := range a.graph.Edges() {
		if !e.Resolved() {
			continue
		}
		ka, kb := a.boundaryKey(e.Source), a.boundaryKey(e.Target)
		if ka == "" || kb == "" || ka == kb {
			continue
		}
		if ka > kb {
			ka, kb = kb, ka
		}
		key := pairKey{ka, kb}
		counts[key]++
		if kinds[key] == nil {
			kinds[key] = make(map[string]struct{})
		}
		kinds[key][e.Kind.String()] = struct{}{}
	}
	if len(counts) == 0 {
		return nil
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	out := make([]Crossroad, 0, len(counts))
	for key, count := range counts {
		ks := make([]string, 0, len(kinds[key]))
		for k := range kinds[key] {
			ks = append(ks, k)
		}
		sort.Strings(ks)

		idA, _ := a.graph.Registry().Lookup(key.a)
		idB, _ := a.graph.Registry().Lookup(key.b)
		out = append(out, Crossroad{
			ID:           key.a + "_" + key.b + "_junction",
			Components:   [2]string{key.a, key.b},
			ComponentIDs: [2]graph.ComponentID{idA, idB},
			EdgeCount:    count,
			Kinds:        ks,
			Criticality:  criticality(count, max),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EdgeCount != out[j].EdgeCount {
			return out[i].EdgeCount > out[j].EdgeCount
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// criticality buckets a count by tercile relative to the run maximum.
func criticality(count, max int) string {
	switch {
	case count*3 >= max*2:
		return "high"
	case count*3 >= max:
		return "medium"
	default:
		return "low"
	}
}

func (a *Analyzer) criticalPaths() []CriticalPath {
	callers := make(map[graph.ComponentID]map[graph.ComponentID]struct{})
	for _, e := range a.graph.Edges() {
		if e.Kind != graph.EdgeCall || !e.Resolved() {
			continue
		}
		if callers[e.Target] == nil {
			callers[e.Target] = make(map[graph.ComponentID]struct{})
		}
		callers[e.Target][e.Source] = struct{}{}
	}

	type entry struct {
		id    graph.ComponentID
		fqn   string
		count int
	}
	entries := make([]entry, 0, len(callers))
	for id, srcs := range callers {
		if len(srcs) < 2 {
			continue
		}
		fqn := a.graph.Registry().FQN(id)
		if fqn == "" {
			continue
		}
		entries = append(entries, entry{id: id, fqn: fqn, count: len(srcs)})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].fqn < entries[j].fqn
	})
	if len(entries) > a.topK {
		entries = entries[:a.topK]
	}

	out := make([]CriticalPath, 0, len(entries))
	for _, e := range entries {
		complexity := "medium"
		if e.count > 5 {
			complexity = "high"
		}
		out = append(out, CriticalPath{
			ID:         "path_" + strings.ReplaceAll(e.fqn, ".", "_"),
			EntryPoint: e.fqn,
			EntryID:    e.id,
			CallCount:  e.count,
			Complexity: complexity,
		})
	}
	return out
}
