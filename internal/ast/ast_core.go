// Package ast defines the immutable tree of statement/expression/declaration
// nodes handed to internal/eval (spec.md §4.C, component C).
//
// Every non-leaf node carries an ordered child list implicitly through its
// struct fields; leaves carry a typed literal. Nodes are owned exclusively
// by their parent and are never mutated once built — internal/eval's
// contract ("exec does not mutate node", spec.md §4.E) depends on that.
package ast

import "github.com/hybris-lang/hybris/internal/token"

// Node is the base interface every AST node satisfies.
type Node interface {
	Pos() token.Token
	node()
}

// Statement is a Node that can appear in a block's statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that produces a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node produced by internal/parser for one source file:
// a sequence of top-level statements executed against the global frame
// (spec.md §2).
type Program struct {
	Statements []Statement
}

func (p *Program) node() {}
func (p *Program) Pos() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Token{}
}

// Block groups statements sharing one lexical body (function/method/loop/
// if/try bodies). It is itself a Statement so it can be a loop or if body.
type Block struct {
	Token token.Token
	Stmts []Statement
}

func (b *Block) node()          {}
func (b *Block) statementNode() {}
func (b *Block) Pos() token.Token { return b.Token }

// ExpressionStatement wraps a bare expression used as a statement
// (e.g. a call for its side effects).
type ExpressionStatement struct {
	Token token.Token
	Expr  Expression
}

func (s *ExpressionStatement) node()          {}
func (s *ExpressionStatement) statementNode() {}
func (s *ExpressionStatement) Pos() token.Token { return s.Token }
