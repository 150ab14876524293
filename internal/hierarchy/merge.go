// # internal/hierarchy/merge.go
package hierarchy

import (
	"log/slog"

	"intmap/internal/graph"
)

// Merge folds per-file results into the graph. Callers must pass results
// sorted by file path: the single-writer merge is what makes id allocation
// deterministic across runs. Registration failures are collected, not fatal.
func Merge(g *graph.Graph, results []*FileResult) []error {
	var errs []error

	for _, res := range results {
		for _, d := range res.Decls {
			if existing, ok := g.ByFQN(d.FQN); ok {
				// Packages are synthesized by every file beneath them.
				if d.Kind == graph.KindPackage {
					continue
				}
				if d.Kind == graph.KindModule && existing.Kind == graph.KindPackage {
					g.PromoteModule(existing.ID, d.Path, d.Docstring)
					continue
				}
			}

			parent := graph.Unresolved
			if d.ParentFQN != "" {
				id, ok := g.Registry().Lookup(d.ParentFQN)
				if !ok {
					slog.Warn("component parent not registered", "fqn", d.FQN, "parent", d.ParentFQN)
				}
				parent = id
			}

			_, err := g.AddComponent(&graph.Component{
				FQN:       d.FQN,
				Name:      d.Name,
				Kind:      d.Kind,
				Parent:    parent,
				Span:      d.Span,
				Path:      d.Path,
				Docstring: d.Docstring,
				Bases:     d.Bases,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}
