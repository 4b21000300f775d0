// Package value implements component A of the execution core: a tagged
// value with a reference count and an "extern-owned" flag, dispatched
// through a per-Kind vtable (spec.md §3, §4.A).
//
// Per the design note in spec.md §9 ("prefer a tagged-union plus a single
// match dispatch per operation ... missing-slot errors become exhaustive-
// match failures"), Value is one flat struct carrying every variant's
// payload, and the vtable is a small Go struct of function fields per Kind
// rather than ~60 raw function pointers. The vtable registry itself is the
// one process-wide global this package keeps (spec.md §9: "the only true
// global is the registry of type vtables, effectively a constant").
package value

import (
	"fmt"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
)

// Kind discriminates the variant set from spec.md §3.
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindChar
	KindBool
	KindString
	KindBlob
	KindVector
	KindMap
	KindStruct
	KindClass
	KindRef
)

func (k Kind) String() string {
	if ops := vtables[k]; ops != nil {
		return ops.TypeName
	}
	return "unknown"
}

// Value is a discriminated union over the variant set, carrying the type
// tag, reference count, extern-owned flag and GC mark bit beside the
// payload (spec.md §3, §4.B design note: "mark bits live beside the
// payload").
type Value struct {
	Kind        Kind
	Refcount    int
	ExternOwned bool
	Marked      bool

	I      int64
	F      float64
	C      byte
	B      bool
	S      string
	Blob   []byte
	Vec    []*Value
	Map    *OrderedMap
	Struct *StructInstance
	Class  *ClassInstance
	Ref    *Value

	// id is a debug/trace handle, not an identity used by any semantic
	// comparison. It stays 0 unless set with SetID; internal/gc.Register
	// does not assign one.
	id uint64
}

// ID returns the debug handle id (0 unless SetID was called).
func (v *Value) ID() uint64 { return v.id }

// SetID sets the debug handle id; not for general use.
func (v *Value) SetID(id uint64) { v.id = id }

// Ops is the per-Kind vtable (spec.md §4.A). A nil function field means
// "unsupported for this type"; dispatching to it is a Syntax error
// (spec.md §3 "Absent slots signal... a runtime error of kind Syntax").
type Ops struct {
	TypeName string

	// Clone produces a deep copy for containers, shallow for scalars, and
	// always clears ExternOwned on the result (spec.md §4.A "Clone
	// semantics").
	Clone func(v *Value) *Value

	// Children returns every value this one directly holds, used by
	// SetReferences and by internal/gc's mark pass. Scalars return nil.
	Children func(v *Value) []*Value

	IValue func(v *Value) (int64, error)
	FValue func(v *Value) (float64, error)
	LValue func(v *Value) bool
	SValue func(v *Value) string

	Cmp func(a, b *Value) (int, error)

	BinOp   func(op ast.BinOp, a, b *Value) (*Value, error)
	UnaryOp func(op ast.UnaryOp, a *Value) (*Value, error)
	Range   func(a, b *Value) (*Value, error)
	Regex   func(a, b *Value) (*Value, error)

	Push   func(c, v *Value) error
	Pop    func(c *Value) (*Value, error)
	At     func(c, idx *Value) (*Value, error)
	Set    func(c, idx, v *Value) error
	Remove func(c, idx *Value) (*Value, error)

	DefineAttribute func(c *Value, name string, access int, v *Value) error
	GetAttribute    func(c *Value, name string) (*Value, error)
	SetAttribute    func(c *Value, name string, v *Value) error
	DefineMethod    func(c *Value, name string, m *ast.MethodDeclaration) error
	GetMethod       func(c *Value, name string, argc int) (*ast.MethodDeclaration, error)

	// Free releases any resources the vtable owner needs to release
	// before the value is reclaimed (e.g. running a class's __expire
	// descriptor). Scalars leave this nil.
	Free func(v *Value)
}

var vtables [KindRef + 1]*Ops

// RegisterOps installs the vtable for kind. Called once per kind during
// package init (scalars, string, blob, vector, map, struct, ref) or by
// internal/class during internal/vm wiring (class kind) — see this
// package's doc comment on the vtable registry being the sole global.
func RegisterOps(k Kind, ops *Ops) { vtables[k] = ops }

func opsFor(v *Value) *Ops {
	if v == nil {
		return nil
	}
	return vtables[v.Kind]
}

func unsupported(v *Value, op string) error {
	return herror.Newf(herror.Syntax, "unsupported operation '%s' for type %s", op, TypeName(v))
}

// TypeName is ob_typename.
func TypeName(v *Value) string {
	if v == nil {
		return "nil"
	}
	if ops := opsFor(v); ops != nil {
		return ops.TypeName
	}
	return "unknown"
}

// Clone is ob_clone.
func Clone(v *Value) *Value {
	if v == nil {
		return nil
	}
	ops := opsFor(v)
	if ops == nil || ops.Clone == nil {
		c := *v
		c.Refcount = 0
		c.ExternOwned = false
		c.Marked = false
		c.id = 0
		return &c
	}
	clone := ops.Clone(v)
	clone.ExternOwned = false
	clone.Refcount = 0
	clone.Marked = false
	clone.id = 0
	return clone
}

// Free is ob_free: runs the vtable's teardown hook, if any (e.g. a class's
// __expire descriptor). It does not reclaim memory — that is
// internal/gc's job once refcount and mark agree the value is dead.
func Free(v *Value) {
	if v == nil {
		return
	}
	if ops := opsFor(v); ops != nil && ops.Free != nil {
		ops.Free(v)
	}
}

// Children is used by SetReferences and by internal/gc's mark pass.
func Children(v *Value) []*Value {
	if v == nil {
		return nil
	}
	if ops := opsFor(v); ops != nil && ops.Children != nil {
		return ops.Children(v)
	}
	return nil
}

// SetReferences is ob_set_references: the sole entry point for mutating
// refcounts. It recurses into every child for containers and class
// attributes (spec.md §4.A "Reference counting"), adjusting each value it
// reaches once per call, so a cyclic graph (two class instances holding
// each other) terminates.
func SetReferences(v *Value, delta int) {
	seen := make(map[*Value]bool)
	var walk func(v *Value)
	walk = func(v *Value) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		v.Refcount += delta
		for _, child := range Children(v) {
			walk(child)
		}
	}
	walk(v)
}

// Deref transitively dereferences alias values (spec.md §3 "Reference/
// alias": "reading dereferences transitively").
func Deref(v *Value) *Value {
	for v != nil && v.Kind == KindRef {
		v = v.Ref
	}
	return v
}

// IValue is ob_ivalue.
func IValue(v *Value) (int64, error) {
	d := Deref(v)
	ops := opsFor(d)
	if ops == nil || ops.IValue == nil {
		return 0, unsupported(d, "ivalue")
	}
	return ops.IValue(d)
}

// FValue is ob_fvalue.
func FValue(v *Value) (float64, error) {
	d := Deref(v)
	ops := opsFor(d)
	if ops == nil || ops.FValue == nil {
		return 0, unsupported(d, "fvalue")
	}
	return ops.FValue(d)
}

// LValue is ob_lvalue: every Kind supports this (used pervasively by
// if/while/ternary/&&/||), so a missing slot falls back to "non-nil and
// non-zero is true" rather than erroring.
func LValue(v *Value) bool {
	d := Deref(v)
	if d == nil {
		return false
	}
	ops := opsFor(d)
	if ops == nil || ops.LValue == nil {
		return true
	}
	return ops.LValue(d)
}

// SValue is ob_svalue.
func SValue(v *Value) string {
	d := Deref(v)
	ops := opsFor(d)
	if ops == nil || ops.SValue == nil {
		return fmt.Sprintf("<%s>", TypeName(d))
	}
	return ops.SValue(d)
}

// Print is ob_print: for the execution core (no terminal), printing and
// stringifying are the same operation.
func Print(v *Value) string { return SValue(v) }

// Cmp is ob_cmp.
func Cmp(a, b *Value) (int, error) {
	a, b = Deref(a), Deref(b)
	ops := opsFor(a)
	if ops == nil || ops.Cmp == nil {
		return 0, unsupported(a, "compare")
	}
	return ops.Cmp(a, b)
}

// BinOp is the ob_add..ob_bw_rshift family: dispatch rule is "the left
// operand's vtable chooses the implementation" (spec.md §4.A).
func BinOp(op ast.BinOp, a, b *Value) (*Value, error) {
	a = Deref(a)
	ops := opsFor(a)
	if ops == nil || ops.BinOp == nil {
		return nil, unsupported(a, string(op))
	}
	return ops.BinOp(op, a, b)
}

// UnaryOp dispatches -, !, ~ on the operand's vtable.
func UnaryOp(op ast.UnaryOp, a *Value) (*Value, error) {
	a = Deref(a)
	ops := opsFor(a)
	if ops == nil || ops.UnaryOp == nil {
		return nil, unsupported(a, string(op))
	}
	return ops.UnaryOp(op, a)
}

// Range is ob_range (`a..b`).
func Range(a, b *Value) (*Value, error) {
	a = Deref(a)
	ops := opsFor(a)
	if ops == nil || ops.Range == nil {
		return nil, unsupported(a, "..")
	}
	return ops.Range(a, b)
}

// Regex is ob_regex (`a ~= b`).
func Regex(a, b *Value) (*Value, error) {
	a = Deref(a)
	ops := opsFor(a)
	if ops == nil || ops.Regex == nil {
		return nil, unsupported(a, "~=")
	}
	return ops.Regex(a, b)
}

// Push is ob_cl_push.
func Push(c, v *Value) error {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.Push == nil {
		return unsupported(c, "push")
	}
	return ops.Push(c, v)
}

// Pop is ob_cl_pop.
func Pop(c *Value) (*Value, error) {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.Pop == nil {
		return nil, unsupported(c, "pop")
	}
	return ops.Pop(c)
}

// At is ob_cl_at (subscript get).
func At(c, idx *Value) (*Value, error) {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.At == nil {
		return nil, unsupported(c, "at")
	}
	return ops.At(c, idx)
}

// Set is ob_cl_set (subscript set).
func Set(c, idx, v *Value) error {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.Set == nil {
		return unsupported(c, "set")
	}
	return ops.Set(c, idx, v)
}

// Remove is ob_cl_remove.
func Remove(c, idx *Value) (*Value, error) {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.Remove == nil {
		return nil, unsupported(c, "remove")
	}
	return ops.Remove(c, idx)
}

// DefineAttribute is ob_define_attribute.
func DefineAttribute(c *Value, name string, access int, v *Value) error {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.DefineAttribute == nil {
		return unsupported(c, "define_attribute")
	}
	return ops.DefineAttribute(c, name, access, v)
}

// GetAttribute is ob_get_attribute.
func GetAttribute(c *Value, name string) (*Value, error) {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.GetAttribute == nil {
		return nil, unsupported(c, "get_attribute")
	}
	return ops.GetAttribute(c, name)
}

// SetAttribute is ob_set_attribute.
func SetAttribute(c *Value, name string, v *Value) error {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.SetAttribute == nil {
		return unsupported(c, "set_attribute")
	}
	return ops.SetAttribute(c, name, v)
}

// DefineMethod is ob_define_method.
func DefineMethod(c *Value, name string, m *ast.MethodDeclaration) error {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.DefineMethod == nil {
		return unsupported(c, "define_method")
	}
	return ops.DefineMethod(c, name, m)
}

// GetMethod is ob_get_method: argc picks the matching overload variation
// (spec.md §4.F).
func GetMethod(c *Value, name string, argc int) (*ast.MethodDeclaration, error) {
	c = Deref(c)
	ops := opsFor(c)
	if ops == nil || ops.GetMethod == nil {
		return nil, unsupported(c, "get_method")
	}
	return ops.GetMethod(c, name, argc)
}
