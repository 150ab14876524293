// # internal/parser/parser.go

// Package parser wraps the tree-sitter Python grammar behind a pooled,
// goroutine-safe parser and provides the tree-walk engine the analysis
// passes dispatch their node handlers through.
package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"intmap/internal/errors"
)

type Parser struct {
	lang *sitter.Language
	pool *Pool
}

func New() *Parser {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	return &Parser{
		lang: lang,
		pool: NewPool(lang),
	}
}

// Parse produces a syntax tree for source. The caller owns the tree and must
// Close it. Parsing never fails on malformed Python: the grammar emits ERROR
// and MISSING nodes instead, which SyntaxErrors surfaces.
func (p *Parser) Parse(source []byte) (*sitter.Tree, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseError, "tree-sitter returned no tree")
	}
	return tree, nil
}

// ActiveParsers reports how many pooled parsers are currently leased.
func (p *Parser) ActiveParsers() int {
	return p.pool.Stats()
}

// SyntaxError is one recoverable parse failure inside an otherwise processed
// file.
type SyntaxError struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// SyntaxErrors walks the tree and reports every ERROR and MISSING node as a
// recoverable syntax error at its 1-based line.
func SyntaxErrors(root *sitter.Node, source []byte, path string) []SyntaxError {
	var errs []SyntaxError
	collectSyntaxErrors(root, source, path, &errs)
	return errs
}

func collectSyntaxErrors(node *sitter.Node, source []byte, path string, out *[]SyntaxError) {
	if node == nil {
		return
	}
	if node.IsMissing() {
		*out = append(*out, SyntaxError{
			Path:    path,
			Line:    int(node.StartPosition().Row) + 1,
			Message: fmt.Sprintf("missing %s", node.Kind()),
		})
		return
	}
	if node.IsError() {
		snippet := string(source[node.StartByte():node.EndByte()])
		if len(snippet) > 40 {
			snippet = snippet[:40] + "..."
		}
		*out = append(*out, SyntaxError{
			Path:    path,
			Line:    int(node.StartPosition().Row) + 1,
			Message: fmt.Sprintf("syntax error near %q", snippet),
		})
		// An ERROR subtree may nest further errors; one report per region
		// keeps the list readable.
		return
	}
	if !node.HasError() {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectSyntaxErrors(node.Child(i), source, path, out)
	}
}
