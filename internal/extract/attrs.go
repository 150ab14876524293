// # internal/extract/attrs.go
package extract

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"intmap/internal/graph"
)

func (w *fileWalker) extractAttribute(node *sitter.Node, store bool) {
	line := w.ctx.Line(node)
	parts := chainParts(w.ctx, node)
	if parts == nil {
		// The chain hangs off a dynamic expression. Record the access
		// against the sentinel and walk the object for nested edges.
		kind := graph.EdgeAttrRead
		if store {
			kind = graph.EdgeAttrWrite
		}
		w.emit(graph.Edge{
			Target:    graph.Unresolved,
			TargetRef: w.ctx.Text(node),
			Kind:      kind,
			Line:      line,
			Payload:   graph.Payload{Expr: w.ctx.Text(node)},
		})
		w.walkExpr(node.ChildByFieldName("object"), false)
		return
	}

	// One edge per hop: intermediate prefixes are reads, the full chain is
	// typed by its syntax position.
	for n := 2; n < len(parts); n++ {
		w.emitAttrHop(strings.Join(parts[:n], "."), graph.EdgeAttrRead, line)
	}
	kind := graph.EdgeAttrRead
	if store {
		kind = graph.EdgeAttrWrite
	}
	w.emitAttrHop(strings.Join(parts, "."), kind, line)
}

func (w *fileWalker) emitAttrHop(ref string, kind graph.EdgeKind, line int) {
	id, resolved := w.resolve(ref)
	p := graph.Payload{}
	if id == graph.Unresolved {
		p.Expr = resolved
	}
	w.emit(graph.Edge{
		Target:    id,
		TargetRef: resolved,
		Kind:      kind,
		Line:      line,
		Payload:   p,
	})
}

func (w *fileWalker) extractClass(node *sitter.Node) {
	name := w.ctx.ChildText(node, "identifier")
	if name == "" {
		return
	}
	classFQN := w.scope().fqn + "." + name
	line := w.ctx.Line(node)

	w.scopes = append(w.scopes, scopeEntry{fqn: classFQN, kind: graph.KindClass})

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			child := supers.Child(i)
			switch child.Kind() {
			case "identifier", "attribute":
				w.emitInherit(classFQN, child, line)
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		w.engine.Walk(w.ctx, body)
	}
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *fileWalker) emitInherit(classFQN string, base *sitter.Node, line int) {
	parts := chainParts(w.ctx, base)
	if parts == nil {
		w.emit(graph.Edge{
			Target:    graph.Unresolved,
			TargetRef: w.ctx.Text(base),
			Kind:      graph.EdgeInherit,
			Line:      line,
			Payload:   graph.Payload{Base: w.ctx.Text(base), Expr: w.ctx.Text(base)},
		})
		return
	}

	ref := strings.Join(parts, ".")
	id, resolved := w.resolve(ref)
	p := graph.Payload{Base: resolved}
	if id == graph.Unresolved {
		p.Expr = resolved
	} else {
		p.Overridden = w.overriddenMethods(classFQN, id)
	}
	w.emit(graph.Edge{
		Target:    id,
		TargetRef: resolved,
		Kind:      graph.EdgeInherit,
		Line:      line,
		Payload:   p,
	})
}

// overriddenMethods is the static intersection of the class's own method
// names with the base's declared method names. No MRO simulation.
func (w *fileWalker) overriddenMethods(classFQN string, baseID graph.ComponentID) []string {
	classID, ok := w.graph.Registry().Lookup(classFQN)
	if !ok {
		return nil
	}
	own := w.methodNames(classID)
	if len(own) == 0 {
		return nil
	}
	var overridden []string
	for name := range w.methodNames(baseID) {
		if _, ok := own[name]; ok {
			overridden = append(overridden, name)
		}
	}
	sort.Strings(overridden)
	return overridden
}

func (w *fileWalker) methodNames(id graph.ComponentID) map[string]struct{} {
	names := make(map[string]struct{})
	for _, childID := range w.graph.Children(id) {
		if c, ok := w.graph.Component(childID); ok && c.Kind == graph.KindMethod {
			names[c.Name] = struct{}{}
		}
	}
	return names
}
