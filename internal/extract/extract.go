// # internal/extract/extract.go

// Package extract implements the second analysis pass: integration-edge
// extraction against a frozen symbol registry. Alias bindings are file-scoped
// and discarded when the file's extraction finishes; every reference that
// survives local bindings, the alias map, and the registry unresolved becomes
// an edge to the unresolved sentinel, never a dropped edge.
package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"intmap/internal/graph"
	"intmap/internal/hierarchy"
	"intmap/internal/parser"
)

// FileEdges is the pass-2 output for one file, in source walk order.
type FileEdges struct {
	Path  string
	Edges []graph.Edge
}

type Extractor struct {
	parser *parser.Parser
	graph  *graph.Graph
}

// New builds an extractor over a graph whose registry has been frozen by the
// hierarchy pass.
func New(p *parser.Parser, g *graph.Graph) *Extractor {
	return &Extractor{parser: p, graph: g}
}

// ExtractFile re-parses one file and emits its integration edges. Files with
// syntax errors were skipped in pass 1 and contribute no edges here either.
func (e *Extractor) ExtractFile(source []byte, relPath, rootName string) (*FileEdges, error) {
	tree, err := e.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if errs := parser.SyntaxErrors(root, source, relPath); len(errs) > 0 {
		return &FileEdges{Path: relPath}, nil
	}

	w := &fileWalker{
		ctx:     &parser.WalkContext{Source: source, Path: relPath},
		graph:   e.graph,
		module:  hierarchy.ModuleFQN(relPath, rootName),
		aliases: make(map[string]string),
		out:     &FileEdges{Path: relPath},
	}
	w.scopes = []scopeEntry{{fqn: w.module, kind: graph.KindModule}}
	w.engine = parser.NewEngine(w.handlers())
	w.engine.Walk(w.ctx, root)
	return w.out, nil
}

type scopeEntry struct {
	fqn  string
	kind graph.ComponentKind
}

type fileWalker struct {
	ctx     *parser.WalkContext
	graph   *graph.Graph
	module  string
	aliases map[string]string
	scopes  []scopeEntry
	engine  *parser.Engine
	out     *FileEdges
}

// handlers is the dispatch table the walk engine drives. Handled kinds stop
// generic descent and manage their own subtrees; everything else (blocks,
// compound statements, decorators, nested expressions) descends until a
// handled kind appears.
func (w *fileWalker) handlers() map[string]parser.NodeHandler {
	return map[string]parser.NodeHandler{
		"import_statement": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractImport(node)
			return true
		},
		"import_from_statement": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractFromImport(node)
			return true
		},
		// __future__ pragmas carry no integration signal.
		"future_import_statement": func(_ *parser.WalkContext, _ *sitter.Node) bool {
			return true
		},
		"class_definition": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractClass(node)
			return true
		},
		"function_definition": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractFunction(node)
			return true
		},
		"assignment": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractAssignment(node)
			return true
		},
		"augmented_assignment": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractAssignment(node)
			return true
		},
		"call": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractCall(node, "")
			return true
		},
		"attribute": func(_ *parser.WalkContext, node *sitter.Node) bool {
			w.extractAttribute(node, false)
			return true
		},
	}
}

func (w *fileWalker) scope() scopeEntry {
	return w.scopes[len(w.scopes)-1]
}

func (w *fileWalker) sourceID() graph.ComponentID {
	id, _ := w.graph.Registry().Lookup(w.scope().fqn)
	return id
}

func (w *fileWalker) emit(e graph.Edge) {
	e.Source = w.sourceID()
	w.out.Edges = append(w.out.Edges, e)
}

// resolve maps a dotted reference to a registry id, trying local scope
// qualification first, then the file's alias bindings, then the registry
// verbatim. The returned string is the fully resolved reference text, which
// is meaningful even when the id is the unresolved sentinel.
func (w *fileWalker) resolve(ref string) (graph.ComponentID, string) {
	if ref == "" {
		return graph.Unresolved, ref
	}

	head, rest, _ := strings.Cut(ref, ".")

	// self.<attr> inside a method refers to the enclosing class.
	if head == "self" && rest != "" {
		for i := len(w.scopes) - 1; i >= 0; i-- {
			if w.scopes[i].kind == graph.KindClass {
				return w.lookupOrSentinel(w.scopes[i].fqn + "." + rest)
			}
		}
	}

	// Local bindings: a name defined in an enclosing scope of this file.
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if id, ok := w.graph.Registry().Lookup(w.scopes[i].fqn + "." + ref); ok {
			return id, w.scopes[i].fqn + "." + ref
		}
	}

	// Alias bindings from this file's imports.
	if resolved, ok := w.aliases[head]; ok {
		full := resolved
		if rest != "" {
			full += "." + rest
		}
		return w.lookupOrSentinel(full)
	}

	return w.lookupOrSentinel(ref)
}

func (w *fileWalker) lookupOrSentinel(fqn string) (graph.ComponentID, string) {
	if id, ok := w.graph.Registry().Lookup(fqn); ok {
		return id, fqn
	}
	return graph.Unresolved, fqn
}

func (w *fileWalker) extractFunction(node *sitter.Node) {
	name := w.ctx.ChildText(node, "identifier")
	if name == "" {
		return
	}
	kind := graph.KindFunction
	if w.scope().kind == graph.KindClass {
		kind = graph.KindMethod
	}
	w.scopes = append(w.scopes, scopeEntry{fqn: w.scope().fqn + "." + name, kind: kind})
	if body := node.ChildByFieldName("body"); body != nil {
		w.engine.Walk(w.ctx, body)
	}
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *fileWalker) extractAssignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	w.walkExpr(left, true)
	if right != nil && right.Kind() == "call" {
		w.extractCall(right, retTarget(w.ctx, left))
	} else {
		w.walkExpr(right, false)
	}
}

// walkExpr descends an expression subtree. store marks assignment-target
// position, which is what distinguishes attr_write from attr_read.
func (w *fileWalker) walkExpr(node *sitter.Node, store bool) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "assignment", "augmented_assignment":
		w.extractAssignment(node)
	case "call":
		w.extractCall(node, "")
	case "attribute":
		w.extractAttribute(node, store)
	default:
		for i := uint(0); i < node.ChildCount(); i++ {
			w.walkExpr(node.Child(i), store)
		}
	}
}

// retTarget names the variable a call's return value lands in, when the
// assignment target is a plain name or attribute chain.
func retTarget(ctx *parser.WalkContext, left *sitter.Node) string {
	if left == nil {
		return ""
	}
	switch left.Kind() {
	case "identifier", "attribute":
		return ctx.Text(left)
	}
	return ""
}

// chainParts flattens an attribute chain like a.b.c into its identifiers.
// Returns nil when the chain hangs off a non-name expression (a call result,
// a subscript), which makes the whole reference dynamic.
func chainParts(ctx *parser.WalkContext, node *sitter.Node) []string {
	var parts []string
	for node.Kind() == "attribute" {
		attr := node.ChildByFieldName("attribute")
		obj := node.ChildByFieldName("object")
		if attr == nil || obj == nil {
			return nil
		}
		parts = append(parts, ctx.Text(attr))
		node = obj
	}
	if node.Kind() != "identifier" {
		return nil
	}
	parts = append(parts, ctx.Text(node))
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}
