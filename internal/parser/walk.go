// # internal/parser/walk.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node during a walk.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *WalkContext, node *sitter.Node) bool

// WalkContext carries shared state/helpers used by all node handlers.
type WalkContext struct {
	Source []byte
	Path   string
}

// Engine walks the syntax tree and dispatches node handlers by kind.
type Engine struct {
	handlers map[string]NodeHandler
}

func NewEngine(handlers map[string]NodeHandler) *Engine {
	return &Engine{handlers: handlers}
}

func (e *Engine) Walk(ctx *WalkContext, node *sitter.Node) {
	if node == nil {
		return
	}

	stop := false
	if handler, ok := e.handlers[node.Kind()]; ok {
		stop = handler(ctx, node)
	}

	if !stop {
		for i := uint(0); i < node.ChildCount(); i++ {
			e.Walk(ctx, node.Child(i))
		}
	}
}

func (c *WalkContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

// Line returns the 1-based start line of node.
func (c *WalkContext) Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// EndLine returns the 1-based end line of node.
func (c *WalkContext) EndLine(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// ChildText returns the text of the first direct child of the given kind.
func (c *WalkContext) ChildText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return c.Text(child)
		}
	}
	return ""
}
