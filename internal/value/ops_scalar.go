package value

import (
	"strconv"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
)

// asFloat coerces any numeric/char operand to float64 for promotion.
func asFloat(v *Value) (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I), true
	case KindFloat:
		return v.F, true
	case KindChar:
		return float64(v.C), true
	}
	return 0, false
}

// asInt coerces int/char operands to int64.
func asInt(v *Value) (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.I, true
	case KindChar:
		return int64(v.C), true
	}
	return 0, false
}

func init() {
	RegisterOps(KindInt, &Ops{
		TypeName: "int",
		Clone:    func(v *Value) *Value { return NewInt(v.I) },
		IValue:   func(v *Value) (int64, error) { return v.I, nil },
		FValue:   func(v *Value) (float64, error) { return float64(v.I), nil },
		LValue:   func(v *Value) bool { return v.I != 0 },
		SValue:   func(v *Value) string { return strconv.FormatInt(v.I, 10) },
		Cmp: func(a, b *Value) (int, error) {
			bf, ok := asFloat(b)
			if !ok {
				return 0, herror.Newf(herror.Syntax, "cannot compare int with %s", TypeName(b))
			}
			switch {
			case b.Kind == KindFloat:
				af := float64(a.I)
				return floatCmp(af, bf), nil
			default:
				bi, _ := asInt(b)
				return intCmp(a.I, bi), nil
			}
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			// numeric promotion: int op float => float (spec.md §4.A)
			if b != nil && b.Kind == KindFloat {
				return floatArith(op, float64(a.I), b.F)
			}
			bi, ok := asInt(b)
			if !ok {
				return nil, herror.Newf(herror.Syntax, "cannot apply '%s' to int and %s", op, TypeName(b))
			}
			return intArith(op, a.I, bi)
		},
		UnaryOp: func(op ast.UnaryOp, a *Value) (*Value, error) {
			switch op {
			case ast.OpNeg:
				return NewInt(-a.I), nil
			case ast.OpNot:
				return NewBool(a.I == 0), nil
			case ast.OpBitNot:
				return NewInt(^a.I), nil
			case ast.OpPreInc:
				return NewInt(a.I + 1), nil
			case ast.OpPreDec:
				return NewInt(a.I - 1), nil
			}
			return nil, herror.Newf(herror.Syntax, "unsupported unary '%s' for int", op)
		},
		Range: func(a, b *Value) (*Value, error) {
			bi, ok := asInt(b)
			if !ok {
				return nil, herror.Newf(herror.Syntax, "range endpoints must be numeric")
			}
			return intRange(a.I, bi), nil
		},
	})

	RegisterOps(KindFloat, &Ops{
		TypeName: "float",
		Clone:    func(v *Value) *Value { return NewFloat(v.F) },
		IValue:   func(v *Value) (int64, error) { return int64(v.F), nil },
		FValue:   func(v *Value) (float64, error) { return v.F, nil },
		LValue:   func(v *Value) bool { return v.F != 0 },
		SValue:   func(v *Value) string { return strconv.FormatFloat(v.F, 'g', -1, 64) },
		Cmp: func(a, b *Value) (int, error) {
			bf, ok := asFloat(b)
			if !ok {
				return 0, herror.Newf(herror.Syntax, "cannot compare float with %s", TypeName(b))
			}
			return floatCmp(a.F, bf), nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			bf, ok := asFloat(b)
			if !ok {
				return nil, herror.Newf(herror.Syntax, "cannot apply '%s' to float and %s", op, TypeName(b))
			}
			return floatArith(op, a.F, bf)
		},
		UnaryOp: func(op ast.UnaryOp, a *Value) (*Value, error) {
			switch op {
			case ast.OpNeg:
				return NewFloat(-a.F), nil
			case ast.OpNot:
				return NewBool(a.F == 0), nil
			}
			return nil, herror.Newf(herror.Syntax, "unsupported unary '%s' for float", op)
		},
	})

	RegisterOps(KindChar, &Ops{
		TypeName: "char",
		Clone:    func(v *Value) *Value { return NewChar(v.C) },
		IValue:   func(v *Value) (int64, error) { return int64(v.C), nil },
		FValue:   func(v *Value) (float64, error) { return float64(v.C), nil },
		LValue:   func(v *Value) bool { return v.C != 0 },
		SValue:   func(v *Value) string { return string(v.C) },
		Cmp: func(a, b *Value) (int, error) {
			bi, ok := asInt(b)
			if !ok {
				bf, ok2 := asFloat(b)
				if !ok2 {
					return 0, herror.Newf(herror.Syntax, "cannot compare char with %s", TypeName(b))
				}
				return floatCmp(float64(a.C), bf), nil
			}
			return intCmp(int64(a.C), bi), nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			// char+int => int (spec.md §4.A); char+float => float; char+char => int
			if b != nil && b.Kind == KindFloat {
				return floatArith(op, float64(a.C), b.F)
			}
			bi, ok := asInt(b)
			if !ok {
				return nil, herror.Newf(herror.Syntax, "cannot apply '%s' to char and %s", op, TypeName(b))
			}
			return intArith(op, int64(a.C), bi)
		},
		UnaryOp: func(op ast.UnaryOp, a *Value) (*Value, error) {
			switch op {
			case ast.OpNot:
				return NewBool(a.C == 0), nil
			case ast.OpBitNot:
				return NewInt(^int64(a.C)), nil
			}
			return nil, herror.Newf(herror.Syntax, "unsupported unary '%s' for char", op)
		},
	})

	RegisterOps(KindBool, &Ops{
		TypeName: "boolean",
		Clone:    func(v *Value) *Value { return NewBool(v.B) },
		IValue: func(v *Value) (int64, error) {
			if v.B {
				return 1, nil
			}
			return 0, nil
		},
		LValue: func(v *Value) bool { return v.B },
		SValue: func(v *Value) string { return strconv.FormatBool(v.B) },
		Cmp: func(a, b *Value) (int, error) {
			if b == nil || b.Kind != KindBool {
				return 0, herror.Newf(herror.Syntax, "cannot compare boolean with %s", TypeName(b))
			}
			if a.B == b.B {
				return 0, nil
			}
			if !a.B && b.B {
				return -1, nil
			}
			return 1, nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			return nil, herror.Newf(herror.Syntax, "cannot apply '%s' to boolean", op)
		},
		UnaryOp: func(op ast.UnaryOp, a *Value) (*Value, error) {
			if op == ast.OpNot {
				return NewBool(!a.B), nil
			}
			return nil, herror.Newf(herror.Syntax, "unsupported unary '%s' for boolean", op)
		},
	})

	RegisterOps(KindNil, &Ops{
		TypeName: "nil",
		Clone:    func(v *Value) *Value { return NewNil() },
		LValue:   func(v *Value) bool { return false },
		SValue:   func(v *Value) string { return "nil" },
		Cmp: func(a, b *Value) (int, error) {
			if b == nil || b.Kind == KindNil {
				return 0, nil
			}
			return -1, nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			return nil, herror.Newf(herror.Syntax, "cannot apply '%s' to nil", op)
		},
	})
}

func intCmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func floatCmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func intArith(op ast.BinOp, a, b int64) (*Value, error) {
	switch op {
	case ast.OpAdd:
		return NewInt(a + b), nil
	case ast.OpSub:
		return NewInt(a - b), nil
	case ast.OpMul:
		return NewInt(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return nil, herror.New(herror.Generic, "division by zero")
		}
		return NewInt(a / b), nil
	case ast.OpMod:
		if b == 0 {
			return nil, herror.New(herror.Generic, "division by zero")
		}
		return NewInt(a % b), nil
	case ast.OpBitAnd:
		return NewInt(a & b), nil
	case ast.OpBitOr:
		return NewInt(a | b), nil
	case ast.OpBitXor:
		return NewInt(a ^ b), nil
	case ast.OpShl:
		return NewInt(a << uint(b)), nil
	case ast.OpShr:
		return NewInt(a >> uint(b)), nil
	}
	return nil, herror.Newf(herror.Syntax, "unsupported integer operator '%s'", op)
}

func floatArith(op ast.BinOp, a, b float64) (*Value, error) {
	switch op {
	case ast.OpAdd:
		return NewFloat(a + b), nil
	case ast.OpSub:
		return NewFloat(a - b), nil
	case ast.OpMul:
		return NewFloat(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return nil, herror.New(herror.Generic, "division by zero")
		}
		return NewFloat(a / b), nil
	}
	return nil, herror.Newf(herror.Syntax, "unsupported float operator '%s'", op)
}

func intRange(from, to int64) *Value {
	var out []*Value
	if from <= to {
		for i := from; i <= to; i++ {
			out = append(out, NewInt(i))
		}
	} else {
		for i := from; i >= to; i-- {
			out = append(out, NewInt(i))
		}
	}
	return NewVector(out)
}
