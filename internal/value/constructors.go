package value

import "github.com/hybris-lang/hybris/internal/ast"

// NewInt, NewFloat, ... are the gc_new_<kind> factories of spec.md §3
// ("Lifecycles"): they return a handle with refcount 0; the first binding
// increments it. Registration with the GC (internal/gc) happens at the
// call site that owns the arena, not here — this package has no GC
// dependency, only the value shape and vtables.
func NewInt(i int64) *Value      { return &Value{Kind: KindInt, I: i} }
func NewFloat(f float64) *Value  { return &Value{Kind: KindFloat, F: f} }
func NewChar(c byte) *Value      { return &Value{Kind: KindChar, C: c} }
func NewBool(b bool) *Value      { return &Value{Kind: KindBool, B: b} }
func NewString(s string) *Value  { return &Value{Kind: KindString, S: s} }
func NewBlob(b []byte) *Value    { return &Value{Kind: KindBlob, Blob: b} }
func NewVector(v []*Value) *Value { return &Value{Kind: KindVector, Vec: v} }
func NewRef(target *Value) *Value { return &Value{Kind: KindRef, Ref: target} }

var nilSingleton = &Value{Kind: KindNil}

// NewNil returns the nil value. Unlike other constructors this may return a
// shared instance — nil carries no mutable payload, so aliasing it is safe
// and avoids needless allocation on every failed lookup.
func NewNil() *Value { return nilSingleton }

// IsTruthy is a readability alias for LValue, the name used by spec.md
// §4.E for conditionals ("ob_lvalue(c)").
func IsTruthy(v *Value) bool { return LValue(v) }

// compareOp handles the operators common to every orderable type:
// ==, !=, <, >, <=, >=, backed by that type's Cmp slot, and &&, ||, backed
// by LValue with short-circuit evaluation left to internal/eval (this
// helper assumes both operands are already evaluated). ok is false when op
// isn't one of these — the caller's type-specific BinOp should continue
// with its own arithmetic.
func compareOp(op ast.BinOp, a, b *Value) (result *Value, ok bool, err error) {
	switch op {
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq:
		c, cerr := Cmp(a, b)
		if cerr != nil {
			return nil, true, cerr
		}
		switch op {
		case ast.OpEq:
			return NewBool(c == 0), true, nil
		case ast.OpNotEq:
			return NewBool(c != 0), true, nil
		case ast.OpLt:
			return NewBool(c < 0), true, nil
		case ast.OpGt:
			return NewBool(c > 0), true, nil
		case ast.OpLtEq:
			return NewBool(c <= 0), true, nil
		case ast.OpGtEq:
			return NewBool(c >= 0), true, nil
		}
	case ast.OpAnd:
		return NewBool(LValue(a) && LValue(b)), true, nil
	case ast.OpOr:
		return NewBool(LValue(a) || LValue(b)), true, nil
	}
	return nil, false, nil
}
