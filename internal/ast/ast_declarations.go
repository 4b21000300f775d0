package ast

import "github.com/hybris-lang/hybris/internal/token"

// FunctionDeclaration is a top-level `function name(params) body`. By
// convention (spec.md §4.C) it has n-1 children for parameter identifiers
// and an n-th child for the body block; here that's just Params + Body.
type FunctionDeclaration struct {
	Token  token.Token
	Name   string
	Params []string
	Body   *Block
}

func (n *FunctionDeclaration) node()            {}
func (n *FunctionDeclaration) statementNode()   {}
func (n *FunctionDeclaration) Pos() token.Token { return n.Token }

// MethodDeclaration is one variation of a class method (spec.md §3 "Class
// instance": "an ordered list of method variations ... distinct AST bodies
// that share a name but differ by parameter count"). A constructor is a
// MethodDeclaration whose Name equals the owning ClassDeclaration.Name.
type MethodDeclaration struct {
	Token  token.Token
	Name   string // mangled as "__op@<op>" for operator overloads, spec.md §4.F
	Params []string
	Body   *Block
}

func (n *MethodDeclaration) node()            {}
func (n *MethodDeclaration) Pos() token.Token { return n.Token }

// Access is the attribute visibility level (spec.md §3 "Class instance").
type Access int

const (
	AccessPublic Access = iota
	AccessPrivate
	AccessProtected
)

// AttributeDeclaration is one class-body `public:`/`private:`/`protected:`
// attribute, with an optional default-value initializer.
type AttributeDeclaration struct {
	Token   token.Token
	Access  Access
	Name    string
	Default Expression // nil => defaults to nil value
}

func (n *AttributeDeclaration) node()            {}
func (n *AttributeDeclaration) Pos() token.Token { return n.Token }

// ClassDeclaration is `class Name [extends Parent1, Parent2] { ... }`
// (spec.md §4.F). Parents are cloned into this class's tables at
// declaration time, then Attributes/Methods are applied on top
// (last-write-wins by declaration order, no C3 linearization).
type ClassDeclaration struct {
	Token      token.Token
	Name       string
	Parents    []string
	Attributes []*AttributeDeclaration
	Methods    []*MethodDeclaration
}

func (n *ClassDeclaration) node()            {}
func (n *ClassDeclaration) statementNode()   {}
func (n *ClassDeclaration) Pos() token.Token { return n.Token }

// StructureDeclaration is `structure Name { field1, field2, ... }`: a named
// record type with a fixed attribute-name list (spec.md §3 "structure-
// instance" variant; distinct from a class-instance — no methods, no
// inheritance, used primarily by native modules via the Extension ABI).
type StructureDeclaration struct {
	Token  token.Token
	Name   string
	Fields []string
}

func (n *StructureDeclaration) node()            {}
func (n *StructureDeclaration) statementNode()   {}
func (n *StructureDeclaration) Pos() token.Token { return n.Token }

// ConstantDeclaration binds Name to Value once; rebinding Name afterward is
// a Syntax error (enforced by internal/eval, not by this node).
type ConstantDeclaration struct {
	Token token.Token
	Name  string
	Value Expression
}

func (n *ConstantDeclaration) node()            {}
func (n *ConstantDeclaration) statementNode()   {}
func (n *ConstantDeclaration) Pos() token.Token { return n.Token }
