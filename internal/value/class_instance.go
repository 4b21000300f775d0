package value

import "github.com/hybris-lang/hybris/internal/ast"

// ClassAttribute pairs an attribute's declared access level with its
// current value handle (spec.md §4.F "Attribute table").
type ClassAttribute struct {
	Access int
	Value  *Value
}

// ClassInstance is the KindClass variant's payload: an ordered attribute
// table, an ordered method table keyed by name (each name may carry more
// than one declaration, resolved by argument count — spec.md §4.F
// "overload resolution"), and the list of parent class names this
// instance's class inherited from at definition time.
//
// This type holds data only. The behavior that makes KindClass values
// actually dispatch operators, attributes and methods lives in
// internal/class, which registers its vtable into this package at
// internal/vm wiring time via RegisterOps(KindClass, ...) — see
// DESIGN.md's internal/class entry on avoiding a static import cycle
// between value and class.
type ClassInstance struct {
	Name    string
	Parents []string

	// AttrOrder preserves declaration order for __size/__to_string/
	// iteration (spec.md §4.F "Attribute table": "insertion ordered").
	AttrOrder []string
	Attrs     map[string]*ClassAttribute

	// Methods maps a (possibly mangled, e.g. "__op@+") name to every
	// overload declared for it, in declaration order.
	Methods map[string][]*ast.MethodDeclaration
}

// NewClassInstance allocates an empty class instance shell; internal/class
// populates Attrs/Methods by cloning the class definition's tables and
// running the constructor.
func NewClassInstance(name string, parents []string) *Value {
	return &Value{Kind: KindClass, Class: &ClassInstance{
		Name:    name,
		Parents: append([]string(nil), parents...),
		Attrs:   make(map[string]*ClassAttribute),
		Methods: make(map[string][]*ast.MethodDeclaration),
	}}
}
