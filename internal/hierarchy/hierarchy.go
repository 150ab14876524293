// # internal/hierarchy/hierarchy.go

// Package hierarchy implements the first analysis pass: per-file component
// discovery with fully-qualified-name assignment. Results are per-file and
// free of registry ids; the orchestrator merges them in sorted path order so
// id allocation stays deterministic.
package hierarchy

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"intmap/internal/graph"
	"intmap/internal/parser"
)

// Decl is one discovered component before registry interning. Decls are
// emitted parent-first so the merge can resolve ParentFQN against components
// already added.
type Decl struct {
	FQN       string
	Name      string
	Kind      graph.ComponentKind
	ParentFQN string
	Span      graph.Span
	Path      string
	Docstring string
	Bases     []string
}

// FileResult is the pass-1 output for a single file. A file that fails to
// parse contributes Errors and no Decls.
type FileResult struct {
	Path      string
	ModuleFQN string
	Decls     []Decl
	Errors    []parser.SyntaxError
}

type Builder struct {
	parser *parser.Parser
}

func NewBuilder(p *parser.Parser) *Builder {
	return &Builder{parser: p}
}

// ModuleFQN derives the dotted module name from a slash-separated path
// relative to the analysis root. An __init__.py takes its directory's FQN;
// a root-level __init__.py falls back to rootName.
func ModuleFQN(relPath, rootName string) string {
	p := strings.TrimSuffix(relPath, ".py")
	if base := p; strings.HasSuffix(base, "__init__") {
		p = strings.TrimSuffix(p, "__init__")
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			return rootName
		}
	}
	return strings.ReplaceAll(p, "/", ".")
}

// BuildFile parses one file and returns its component declarations. Files
// with syntax errors are reported and skipped entirely, keeping partial
// hierarchies out of the registry.
func (b *Builder) BuildFile(source []byte, relPath, rootName string) (*FileResult, error) {
	tree, err := b.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if errs := parser.SyntaxErrors(root, source, relPath); len(errs) > 0 {
		return &FileResult{Path: relPath, Errors: errs}, nil
	}

	moduleFQN := ModuleFQN(relPath, rootName)
	res := &FileResult{Path: relPath, ModuleFQN: moduleFQN}
	ctx := &parser.WalkContext{Source: source, Path: relPath}

	// Synthesize package components for every ancestor path segment.
	parts := strings.Split(moduleFQN, ".")
	for i := 1; i < len(parts); i++ {
		pkgFQN := strings.Join(parts[:i], ".")
		parentFQN := ""
		if i > 1 {
			parentFQN = strings.Join(parts[:i-1], ".")
		}
		res.Decls = append(res.Decls, Decl{
			FQN:       pkgFQN,
			Name:      parts[i-1],
			Kind:      graph.KindPackage,
			ParentFQN: parentFQN,
			Span:      graph.Span{Start: 1, End: 1},
		})
	}

	moduleParent := ""
	if len(parts) > 1 {
		moduleParent = strings.Join(parts[:len(parts)-1], ".")
	}
	res.Decls = append(res.Decls, Decl{
		FQN:       moduleFQN,
		Name:      parts[len(parts)-1],
		Kind:      graph.KindModule,
		ParentFQN: moduleParent,
		Span:      graph.Span{Start: 1, End: 1},
		Path:      relPath,
		Docstring: docstring(ctx, root),
	})

	w := &walker{ctx: ctx, res: res}
	w.walkBody(root, scope{fqn: moduleFQN, kind: graph.KindModule})
	return res, nil
}

type scope struct {
	fqn  string
	kind graph.ComponentKind
}

type walker struct {
	ctx *parser.WalkContext
	res *FileResult
}

func (w *walker) walkBody(node *sitter.Node, sc scope) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "decorated_definition":
			if def := child.ChildByFieldName("definition"); def != nil {
				w.walkDefinition(def, sc)
			}
		case "class_definition", "function_definition":
			w.walkDefinition(child, sc)
		case "expression_statement":
			w.walkAssignments(child, sc)
		case "if_statement", "try_statement", "with_statement",
			"for_statement", "while_statement", "match_statement",
			"block", "else_clause", "elif_clause", "except_clause",
			"finally_clause", "case_clause":
			w.walkBody(child, sc)
		}
	}
}

func (w *walker) walkDefinition(node *sitter.Node, sc scope) {
	name := w.ctx.ChildText(node, "identifier")
	if name == "" {
		return
	}
	fqn := sc.fqn + "." + name
	span := graph.Span{Start: w.ctx.Line(node), End: w.ctx.EndLine(node)}
	body := node.ChildByFieldName("body")

	switch node.Kind() {
	case "class_definition":
		w.res.Decls = append(w.res.Decls, Decl{
			FQN:       fqn,
			Name:      name,
			Kind:      graph.KindClass,
			ParentFQN: sc.fqn,
			Span:      span,
			Path:      w.res.Path,
			Docstring: docstring(w.ctx, body),
			Bases:     w.classBases(node),
		})
		if body != nil {
			w.walkBody(body, scope{fqn: fqn, kind: graph.KindClass})
		}
	case "function_definition":
		kind := graph.KindFunction
		if sc.kind == graph.KindClass {
			kind = graph.KindMethod
		}
		w.res.Decls = append(w.res.Decls, Decl{
			FQN:       fqn,
			Name:      name,
			Kind:      kind,
			ParentFQN: sc.fqn,
			Span:      span,
			Path:      w.res.Path,
			Docstring: docstring(w.ctx, body),
		})
		if body != nil {
			w.walkBody(body, scope{fqn: fqn, kind: kind})
		}
	}
}

// walkAssignments discovers attribute components: class-body assignments and
// self.<name> targets inside methods.
func (w *walker) walkAssignments(stmt *sitter.Node, sc scope) {
	for i := uint(0); i < stmt.ChildCount(); i++ {
		node := stmt.Child(i)
		if node.Kind() != "assignment" && node.Kind() != "augmented_assignment" {
			continue
		}
		left := node.ChildByFieldName("left")
		if left == nil {
			continue
		}
		span := graph.Span{Start: w.ctx.Line(node), End: w.ctx.EndLine(node)}

		switch {
		case sc.kind == graph.KindClass && left.Kind() == "identifier":
			name := w.ctx.Text(left)
			w.res.Decls = append(w.res.Decls, Decl{
				FQN:       sc.fqn + "." + name,
				Name:      name,
				Kind:      graph.KindAttribute,
				ParentFQN: sc.fqn,
				Span:      span,
				Path:      w.res.Path,
			})
		case sc.kind == graph.KindMethod && left.Kind() == "attribute":
			obj := left.ChildByFieldName("object")
			attr := left.ChildByFieldName("attribute")
			if obj == nil || attr == nil || w.ctx.Text(obj) != "self" {
				continue
			}
			classFQN := parentScope(sc.fqn)
			name := w.ctx.Text(attr)
			w.res.Decls = append(w.res.Decls, Decl{
				FQN:       classFQN + "." + name,
				Name:      name,
				Kind:      graph.KindAttribute,
				ParentFQN: classFQN,
				Span:      span,
				Path:      w.res.Path,
			})
		}
	}
}

func (w *walker) classBases(class *sitter.Node) []string {
	supers := class.ChildByFieldName("superclasses")
	if supers == nil {
		return nil
	}
	var bases []string
	for i := uint(0); i < supers.ChildCount(); i++ {
		child := supers.Child(i)
		switch child.Kind() {
		case "identifier", "attribute":
			bases = append(bases, w.ctx.Text(child))
		}
	}
	return bases
}

func parentScope(fqn string) string {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return ""
	}
	return fqn[:idx]
}

// docstring extracts the leading string literal of a module or block body.
func docstring(ctx *parser.WalkContext, body *sitter.Node) string {
	if body == nil {
		return ""
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child.Kind() == "comment" {
			continue
		}
		if child.Kind() != "expression_statement" {
			return ""
		}
		str := child.Child(0)
		if str == nil || str.Kind() != "string" {
			return ""
		}
		return stripQuotes(ctx.Text(str))
	}
	return ""
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}
