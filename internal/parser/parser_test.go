// # internal/parser/parser_test.go
package parser

import (
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func TestParseWellFormed(t *testing.T) {
	p := New()
	source := []byte("import os\n\ndef main():\n    return os.getcwd()\n")

	tree, err := p.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Kind() != "module" {
		t.Errorf("expected root kind module, got %s", root.Kind())
	}
	if root.HasError() {
		t.Error("well-formed source should produce no error nodes")
	}
	if errs := SyntaxErrors(root, source, "main.py"); len(errs) != 0 {
		t.Errorf("expected no syntax errors, got %+v", errs)
	}
	if p.ActiveParsers() != 0 {
		t.Errorf("expected all parsers returned to pool, %d leased", p.ActiveParsers())
	}
}

func TestParseMalformed(t *testing.T) {
	p := New()
	source := []byte("def broken(:\n    pass\n\ndef ok():\n    return 1\n")

	tree, err := p.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	errs := SyntaxErrors(tree.RootNode(), source, "broken.py")
	if len(errs) == 0 {
		t.Fatal("expected syntax errors for malformed source")
	}
	for _, se := range errs {
		if se.Path != "broken.py" {
			t.Errorf("expected path broken.py, got %s", se.Path)
		}
		if se.Line < 1 {
			t.Errorf("lines are 1-based, got %d", se.Line)
		}
	}
}

func TestWalkDispatch(t *testing.T) {
	p := New()
	source := []byte("class A:\n    def go(self):\n        pass\n\ndef top():\n    pass\n")

	tree, err := p.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	var classes, funcs []string
	ctx := &WalkContext{Source: source, Path: "a.py"}
	engine := NewEngine(map[string]NodeHandler{
		"class_definition": func(ctx *WalkContext, node *sitter.Node) bool {
			classes = append(classes, ctx.ChildText(node, "identifier"))
			return false
		},
		"function_definition": func(ctx *WalkContext, node *sitter.Node) bool {
			funcs = append(funcs, ctx.ChildText(node, "identifier"))
			return false
		},
	})
	engine.Walk(ctx, tree.RootNode())

	if len(classes) != 1 || classes[0] != "A" {
		t.Errorf("expected classes [A], got %v", classes)
	}
	if len(funcs) != 2 || funcs[0] != "go" || funcs[1] != "top" {
		t.Errorf("expected funcs [go top], got %v", funcs)
	}
}

func TestWalkStopSkipsChildren(t *testing.T) {
	p := New()
	source := []byte("class A:\n    def inner(self):\n        pass\n")

	tree, err := p.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	var funcs int
	ctx := &WalkContext{Source: source, Path: "a.py"}
	engine := NewEngine(map[string]NodeHandler{
		"class_definition": func(ctx *WalkContext, node *sitter.Node) bool {
			return true
		},
		"function_definition": func(ctx *WalkContext, node *sitter.Node) bool {
			funcs++
			return false
		},
	})
	engine.Walk(ctx, tree.RootNode())

	if funcs != 0 {
		t.Errorf("handler returning true must stop descent, saw %d functions", funcs)
	}
}
