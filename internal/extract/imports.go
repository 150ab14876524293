// # internal/extract/imports.go
package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"intmap/internal/graph"
)

func (w *fileWalker) extractImport(node *sitter.Node) {
	line := w.ctx.Line(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			module := w.ctx.Text(child)
			w.aliases[module] = module
			w.emitImport(module, []string{module}, line, graph.Payload{})
		case "aliased_import":
			var module, alias string
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				if sub.Kind() == "dotted_name" || sub.Kind() == "identifier" {
					if module == "" {
						module = w.ctx.Text(sub)
					} else {
						alias = w.ctx.Text(sub)
					}
				}
			}
			if module == "" {
				continue
			}
			if alias == "" {
				alias = module
			}
			w.aliases[alias] = module
			w.emitImport(module, []string{alias}, line, graph.Payload{})
		}
	}
}

func (w *fileWalker) extractFromImport(node *sitter.Node) {
	var module string
	var items []string
	star := false

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "relative_import":
			module = w.resolveRelative(w.ctx.Text(child))
		case "dotted_name", "identifier":
			if module == "" {
				module = w.ctx.Text(child)
			} else {
				items = append(items, w.ctx.Text(child))
			}
		case "wildcard_import":
			star = true
		case "import_list":
			w.collectImportItems(child, module, &items)
		case "aliased_import":
			w.collectAliasedItem(child, module, &items)
		}
	}
	if module == "" {
		return
	}

	line := w.ctx.Line(node)
	if star {
		w.emitImport(module, []string{"*"}, line, graph.Payload{
			Star: true,
			Note: "star import: members not enumerated",
		})
		return
	}

	for _, item := range items {
		if _, bound := w.aliases[item]; !bound {
			w.aliases[item] = module + "." + item
		}
	}

	// A single-name from-import targets the named component when it is
	// registered, otherwise the module.
	if len(items) == 1 {
		if id, ok := w.graph.Registry().Lookup(module + "." + items[0]); ok {
			w.emit(graph.Edge{
				Target:    id,
				TargetRef: module + "." + items[0],
				Kind:      graph.EdgeImport,
				Line:      line,
				Payload:   graph.Payload{Items: items},
			})
			return
		}
	}
	w.emitImport(module, items, line, graph.Payload{})
}

func (w *fileWalker) emitImport(module string, items []string, line int, p graph.Payload) {
	id, ref := w.lookupOrSentinel(module)
	p.Items = items
	if id == graph.Unresolved {
		p.Expr = ref
	}
	w.emit(graph.Edge{
		Target:    id,
		TargetRef: ref,
		Kind:      graph.EdgeImport,
		Line:      line,
		Payload:   p,
	})
}

func (w *fileWalker) collectImportItems(list *sitter.Node, module string, items *[]string) {
	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			*items = append(*items, w.ctx.Text(child))
		case "aliased_import":
			w.collectAliasedItem(child, module, items)
		}
	}
}

func (w *fileWalker) collectAliasedItem(node *sitter.Node, module string, items *[]string) {
	var name, alias string
	for i := uint(0); i < node.ChildCount(); i++ {
		sub := node.Child(i)
		if sub.Kind() == "dotted_name" || sub.Kind() == "identifier" {
			if name == "" {
				name = w.ctx.Text(sub)
			} else {
				alias = w.ctx.Text(sub)
			}
		}
	}
	if name == "" {
		return
	}
	*items = append(*items, name)
	if alias != "" {
		w.aliases[alias] = module + "." + name
	}
}

// resolveRelative turns a relative import prefix like "..utils" into an
// absolute module path by walking up the current module's FQN one segment
// per leading dot.
func (w *fileWalker) resolveRelative(rel string) string {
	dots := 0
	for dots < len(rel) && rel[dots] == '.' {
		dots++
	}
	tail := rel[dots:]

	parts := strings.Split(w.module, ".")
	if dots > len(parts) {
		parts = nil
	} else {
		parts = parts[:len(parts)-dots]
	}

	base := strings.Join(parts, ".")
	switch {
	case base == "":
		return tail
	case tail == "":
		return base
	default:
		return base + "." + tail
	}
}
