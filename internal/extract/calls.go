// # internal/extract/calls.go
package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"intmap/internal/graph"
)

func (w *fileWalker) extractCall(node *sitter.Node, retVar string) {
	fn := node.ChildByFieldName("function")
	line := w.ctx.Line(node)
	args, argNodes := w.callArgs(node)

	// Argument expressions may contain further calls and attribute access.
	defer func() {
		for _, a := range argNodes {
			w.walkExpr(a, false)
		}
	}()

	if fn == nil {
		return
	}

	parts := chainParts(w.ctx, fn)
	if parts == nil {
		// Dynamic callee: a call result, subscript, or lambda. Keep the
		// expression as diagnostic payload and walk it for nested edges.
		w.emit(graph.Edge{
			Target:    graph.Unresolved,
			TargetRef: w.ctx.Text(fn),
			Kind:      graph.EdgeCall,
			Line:      line,
			Payload:   graph.Payload{Args: args, Expr: w.ctx.Text(fn)},
		})
		w.walkExpr(fn, false)
		return
	}

	ref := strings.Join(parts, ".")
	if ref == "__import__" || ref == "importlib.import_module" {
		w.extractDynamicImport(node, argNodes, line)
		return
	}

	// Chained access decomposes into one edge per hop: every intermediate
	// prefix is an attribute read, the full chain is the call.
	for n := 2; n < len(parts); n++ {
		w.emitAttrHop(strings.Join(parts[:n], "."), graph.EdgeAttrRead, line)
	}

	id, resolved := w.resolve(ref)
	p := graph.Payload{Args: args}
	if id == graph.Unresolved {
		p.Expr = resolved
	}
	if retVar != "" {
		p.ReturnCaptured = true
		p.ReturnVar = retVar
		if id != graph.Unresolved {
			p.DataFlow = retVar + " <- " + resolved
		}
	}
	w.emit(graph.Edge{
		Target:    id,
		TargetRef: resolved,
		Kind:      graph.EdgeCall,
		Line:      line,
		Payload:   p,
	})
}

// extractDynamicImport handles __import__ / importlib.import_module. A
// literal string argument imports that module; anything else is an
// unresolved dynamic import.
func (w *fileWalker) extractDynamicImport(node *sitter.Node, argNodes []*sitter.Node, line int) {
	if len(argNodes) > 0 && argNodes[0].Kind() == "string" {
		module := stringLiteral(w.ctx.Text(argNodes[0]))
		if module != "" {
			w.emitImport(module, []string{module}, line, graph.Payload{Note: "dynamic import"})
			return
		}
	}
	w.emit(graph.Edge{
		Target:    graph.Unresolved,
		TargetRef: w.ctx.Text(node),
		Kind:      graph.EdgeImport,
		Line:      line,
		Payload:   graph.Payload{Note: "dynamic import", Expr: w.ctx.Text(node)},
	})
}

func (w *fileWalker) callArgs(call *sitter.Node) ([]graph.CallArg, []*sitter.Node) {
	list := call.ChildByFieldName("arguments")
	if list == nil {
		return nil, nil
	}

	var args []graph.CallArg
	var nodes []*sitter.Node
	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		switch child.Kind() {
		case "(", ")", ",", "comment":
			continue
		case "keyword_argument":
			name := child.ChildByFieldName("name")
			value := child.ChildByFieldName("value")
			if value == nil {
				continue
			}
			args = append(args, graph.CallArg{
				Name:  w.ctx.Text(name),
				Value: valueSummary(w.ctx.Text(value)),
				Type:  argType(value.Kind()),
			})
			nodes = append(nodes, value)
		default:
			args = append(args, graph.CallArg{
				Value: valueSummary(w.ctx.Text(child)),
				Type:  argType(child.Kind()),
			})
			nodes = append(nodes, child)
		}
	}
	return args, nodes
}

// argType is a best-effort syntactic tag, never a type inference.
func argType(kind string) string {
	switch kind {
	case "string", "concatenated_string":
		return "str"
	case "integer":
		return "int"
	case "float":
		return "float"
	case "true", "false":
		return "bool"
	case "none":
		return "none"
	case "list", "list_comprehension":
		return "list"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "tuple":
		return "tuple"
	case "set", "set_comprehension":
		return "set"
	case "call":
		return "call"
	case "identifier", "attribute":
		return "name"
	case "lambda":
		return "lambda"
	case "list_splat", "dictionary_splat":
		return "splat"
	}
	return "expr"
}

const maxValueSummary = 80

func valueSummary(s string) string {
	if len(s) > maxValueSummary {
		return s[:maxValueSummary] + "..."
	}
	return s
}

func stringLiteral(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return ""
}
