// # internal/flow/flow_test.go
package flow

import (
	"reflect"
	"testing"

	"intmap/internal/graph"
)

func seedGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	add := func(fqn string, kind graph.ComponentKind, parent string) graph.ComponentID {
		pid := graph.Unresolved
		if parent != "" {
			pid, _ = g.Registry().Lookup(parent)
		}
		id, err := g.AddComponent(&graph.Component{
			FQN: fqn, Name: fqn, Kind: kind, Parent: pid, Span: graph.Span{Start: 1, End: 1},
		})
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	add("pkg", graph.KindPackage, "")
	add("pkg.a", graph.KindModule, "pkg")
	add("pkg.b", graph.KindModule, "pkg")
	add("pkg.a.foo", graph.KindFunction, "pkg.a")
	add("pkg.b.bar", graph.KindFunction, "pkg.b")
	add("util", graph.KindModule, "")
	add("util.log", graph.KindFunction, "util")
	return g
}

func id(g *graph.Graph, fqn string) graph.ComponentID {
	v, _ := g.Registry().Lookup(fqn)
	return v
}

func TestCrossroads(t *testing.T) {
	g := seedGraph(t)
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b"), Target: id(g, "pkg.a.foo"), Kind: graph.EdgeImport, Line: 1})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b"), Target: id(g, "pkg.a.foo"), Kind: graph.EdgeCall, Line: 2})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b.bar"), Target: id(g, "util.log"), Kind: graph.EdgeCall, Line: 3})
	// Unresolved edges cross no known boundary.
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b"), Target: graph.Unresolved, TargetRef: "os.path", Kind: graph.EdgeCall, Line: 4})
	// Same-boundary edges are not crossroads.
	g.AddEdge(graph.Edge{Source: id(g, "pkg.a"), Target: id(g, "pkg.a.foo"), Kind: graph.EdgeCall, Line: 5})

	a := NewAnalyzer(g, 2, 5)
	crossroads, _ := a.Analyze()

	if len(crossroads) != 2 {
		t.Fatalf("expected 2 crossroads, got %d: %+v", len(crossroads), crossroads)
	}

	top := crossroads[0]
	if top.ID != "pkg.a_pkg.b_junction" {
		t.Errorf("top crossroad id = %q", top.ID)
	}
	if top.EdgeCount != 2 {
		t.Errorf("top crossroad edge count = %d", top.EdgeCount)
	}
	if !reflect.DeepEqual(top.Kinds, []string{"call", "import"}) {
		t.Errorf("top crossroad kinds = %v", top.Kinds)
	}
	if top.Criticality != "high" {
		t.Errorf("run-max crossroad should be high, got %s", top.Criticality)
	}
	if top.Components != [2]string{"pkg.a", "pkg.b"} {
		t.Errorf("components = %v", top.Components)
	}

	second := crossroads[1]
	if second.Components != [2]string{"pkg.b", "util"} {
		t.Errorf("second crossroad components = %v", second.Components)
	}
	if second.EdgeCount != 1 {
		t.Errorf("second crossroad edge count = %d", second.EdgeCount)
	}
}

func TestCrossroadBoundaryIsModuleLevel(t *testing.T) {
	g := graph.New()
	add := func(fqn string, kind graph.ComponentKind, parent string) {
		pid := graph.Unresolved
		if parent != "" {
			pid, _ = g.Registry().Lookup(parent)
		}
		if _, err := g.AddComponent(&graph.Component{
			FQN: fqn, Name: fqn, Kind: kind, Parent: pid, Span: graph.Span{Start: 1, End: 1},
		}); err != nil {
			t.Fatal(err)
		}
	}
	add("pkg", graph.KindPackage, "")
	add("pkg.a", graph.KindModule, "pkg")
	add("pkg.a.Widget", graph.KindClass, "pkg.a")
	add("pkg.a.Widget.render", graph.KindMethod, "pkg.a.Widget")
	add("pkg.b", graph.KindModule, "pkg")
	add("pkg.b.bar", graph.KindFunction, "pkg.b")

	g.AddEdge(graph.Edge{Source: id(g, "pkg.b.bar"), Target: id(g, "pkg.a.Widget.render"), Kind: graph.EdgeCall, Line: 1})

	// With a wide segment budget the boundary must still be the enclosing
	// module, never a class or function FQN.
	crossroads, _ := NewAnalyzer(g, 3, 5).Analyze()
	if len(crossroads) != 1 {
		t.Fatalf("expected 1 crossroad, got %d: %+v", len(crossroads), crossroads)
	}
	if crossroads[0].Components != [2]string{"pkg.a", "pkg.b"} {
		t.Errorf("boundary components = %v", crossroads[0].Components)
	}
	if crossroads[0].ID != "pkg.a_pkg.b_junction" {
		t.Errorf("boundary id = %q", crossroads[0].ID)
	}
}

func TestCrossroadTieBreak(t *testing.T) {
	g := seedGraph(t)
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b"), Target: id(g, "util.log"), Kind: graph.EdgeCall, Line: 1})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.a"), Target: id(g, "pkg.b.bar"), Kind: graph.EdgeCall, Line: 2})

	crossroads, _ := NewAnalyzer(g, 2, 5).Analyze()
	if len(crossroads) != 2 {
		t.Fatalf("expected 2 crossroads, got %d", len(crossroads))
	}
	if crossroads[0].ID >= crossroads[1].ID {
		t.Errorf("equal counts must sort lexicographically: %q then %q",
			crossroads[0].ID, crossroads[1].ID)
	}
}

func TestCriticalPaths(t *testing.T) {
	g := seedGraph(t)
	foo := id(g, "pkg.a.foo")
	// Three distinct callers of pkg.a.foo, two of util.log, one of pkg.b.bar.
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b"), Target: foo, Kind: graph.EdgeCall, Line: 1})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b.bar"), Target: foo, Kind: graph.EdgeCall, Line: 2})
	g.AddEdge(graph.Edge{Source: id(g, "util.log"), Target: foo, Kind: graph.EdgeCall, Line: 3})
	// Repeat call from the same caller must not inflate distinct in-degree.
	g.AddEdge(graph.Edge{Source: id(g, "util.log"), Target: foo, Kind: graph.EdgeCall, Line: 4})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.a.foo"), Target: id(g, "util.log"), Kind: graph.EdgeCall, Line: 5})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.b.bar"), Target: id(g, "util.log"), Kind: graph.EdgeCall, Line: 6})
	g.AddEdge(graph.Edge{Source: id(g, "pkg.a"), Target: id(g, "pkg.b.bar"), Kind: graph.EdgeCall, Line: 7})
	// Import edges never contribute to the call-only subgraph.
	g.AddEdge(graph.Edge{Source: id(g, "pkg.a"), Target: foo, Kind: graph.EdgeImport, Line: 8})

	_, paths := NewAnalyzer(g, 2, 5).Analyze()

	if len(paths) != 2 {
		t.Fatalf("expected 2 critical paths, got %d: %+v", len(paths), paths)
	}
	if paths[0].EntryPoint != "pkg.a.foo" || paths[0].CallCount != 3 {
		t.Errorf("top path = %+v", paths[0])
	}
	if paths[0].ID != "path_pkg_a_foo" {
		t.Errorf("path id = %q", paths[0].ID)
	}
	if paths[0].Complexity != "medium" {
		t.Errorf("3 callers is medium, got %s", paths[0].Complexity)
	}
	if paths[1].EntryPoint != "util.log" || paths[1].CallCount != 2 {
		t.Errorf("second path = %+v", paths[1])
	}
}

func TestCriticalPathsTopK(t *testing.T) {
	g := seedGraph(t)
	foo := id(g, "pkg.a.foo")
	bar := id(g, "pkg.b.bar")
	log := id(g, "util.log")
	for _, target := range []graph.ComponentID{foo, bar, log} {
		g.AddEdge(graph.Edge{Source: id(g, "pkg.a"), Target: target, Kind: graph.EdgeCall, Line: 1})
		g.AddEdge(graph.Edge{Source: id(g, "pkg.b"), Target: target, Kind: graph.EdgeCall, Line: 2})
	}

	_, paths := NewAnalyzer(g, 2, 2).Analyze()
	if len(paths) != 2 {
		t.Fatalf("topK must cap the ranking, got %d", len(paths))
	}
	// Equal counts: lexicographic on entry fqn.
	if paths[0].EntryPoint != "pkg.a.foo" || paths[1].EntryPoint != "pkg.b.bar" {
		t.Errorf("tie-break order wrong: %q, %q", paths[0].EntryPoint, paths[1].EntryPoint)
	}
}

func TestEmptyGraph(t *testing.T) {
	crossroads, paths := NewAnalyzer(graph.New(), 2, 5).Analyze()
	if len(crossroads) != 0 || len(paths) != 0 {
		t.Errorf("empty graph must yield empty analysis, got %d/%d", len(crossroads), len(paths))
	}
}
