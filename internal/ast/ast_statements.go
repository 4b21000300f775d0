package ast

import "github.com/hybris-lang/hybris/internal/token"

// IfStatement is `if (cond) then [else alt]`.
type IfStatement struct {
	Token token.Token
	Cond  Expression
	Then  *Block
	Else  Statement // *Block or *IfStatement (else-if chain), nil if absent
}

func (n *IfStatement) node()           {}
func (n *IfStatement) statementNode()  {}
func (n *IfStatement) Pos() token.Token { return n.Token }

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	Token token.Token
	Cond  Expression
	Body  *Block
}

func (n *WhileStatement) node()           {}
func (n *WhileStatement) statementNode()  {}
func (n *WhileStatement) Pos() token.Token { return n.Token }

// DoWhileStatement is `do body while (cond);`.
type DoWhileStatement struct {
	Token token.Token
	Body  *Block
	Cond  Expression
}

func (n *DoWhileStatement) node()           {}
func (n *DoWhileStatement) statementNode()  {}
func (n *DoWhileStatement) Pos() token.Token { return n.Token }

// ForStatement is the C-style `for (init; cond; step) body`. Any clause may
// be nil.
type ForStatement struct {
	Token token.Token
	Init  Statement
	Cond  Expression
	Step  Statement
	Body  *Block
}

func (n *ForStatement) node()           {}
func (n *ForStatement) statementNode()  {}
func (n *ForStatement) Pos() token.Token { return n.Token }

// ForeachStatement is `foreach (x of collection) body` when KeyName == "",
// or `foreach (k -> v of map) body` otherwise (spec.md §4.E).
type ForeachStatement struct {
	Token      token.Token
	KeyName    string // empty for the single-variable form
	ValueName  string
	Collection Expression
	Body       *Block
}

func (n *ForeachStatement) node()           {}
func (n *ForeachStatement) statementNode()  {}
func (n *ForeachStatement) Pos() token.Token { return n.Token }

// CaseClause is one `case expr: stmts` arm, or the `default:` arm when
// IsDefault is true. The parser does not require a `break` at the end of
// an arm; internal/eval runs on into the following arm until a `break`
// stops it.
type CaseClause struct {
	Token     token.Token
	IsDefault bool
	Value     Expression
	Body      []Statement
}

// SwitchStatement is `switch (subject) { case ... }` with sequential
// ob_l_same testing (spec.md §4.E).
type SwitchStatement struct {
	Token   token.Token
	Subject Expression
	Cases   []CaseClause
}

func (n *SwitchStatement) node()           {}
func (n *SwitchStatement) statementNode()  {}
func (n *SwitchStatement) Pos() token.Token { return n.Token }

// BreakStatement sets the enclosing frame's breaking bit.
type BreakStatement struct{ Token token.Token }

func (n *BreakStatement) node()           {}
func (n *BreakStatement) statementNode()  {}
func (n *BreakStatement) Pos() token.Token { return n.Token }

// NextStatement sets the enclosing frame's continuing bit.
type NextStatement struct{ Token token.Token }

func (n *NextStatement) node()           {}
func (n *NextStatement) statementNode()  {}
func (n *NextStatement) Pos() token.Token { return n.Token }

// ReturnStatement sets the enclosing frame's returning bit, optionally
// carrying a value.
type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for bare `return;`
}

func (n *ReturnStatement) node()           {}
func (n *ReturnStatement) statementNode()  {}
func (n *ReturnStatement) Pos() token.Token { return n.Token }

// ThrowStatement raises a script-level exception (spec.md §7).
type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (n *ThrowStatement) node()           {}
func (n *ThrowStatement) statementNode()  {}
func (n *ThrowStatement) Pos() token.Token { return n.Token }

// TryStatement is `try body catch (name) handler [finally cleanup]`
// (spec.md §4.E "try").
type TryStatement struct {
	Token     token.Token
	Body      *Block
	CatchName string
	Handler   *Block
	Finally   *Block // nil if absent
}

func (n *TryStatement) node()           {}
func (n *TryStatement) statementNode()  {}
func (n *TryStatement) Pos() token.Token { return n.Token }
