package value

import (
	"strconv"
	"strings"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
)

func init() {
	RegisterOps(KindString, &Ops{
		TypeName: "string",
		Clone:    func(v *Value) *Value { return NewString(v.S) },
		IValue: func(v *Value) (int64, error) {
			i, err := strconv.ParseInt(strings.TrimSpace(v.S), 10, 64)
			if err != nil {
				return 0, herror.Newf(herror.Generic, "cannot convert %q to int", v.S)
			}
			return i, nil
		},
		FValue: func(v *Value) (float64, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
			if err != nil {
				return 0, herror.Newf(herror.Generic, "cannot convert %q to float", v.S)
			}
			return f, nil
		},
		LValue: func(v *Value) bool { return len(v.S) > 0 },
		SValue: func(v *Value) string { return v.S },
		Cmp: func(a, b *Value) (int, error) {
			return strings.Compare(a.S, SValue(b)), nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			switch op {
			case ast.OpAdd, ast.OpDotConcat:
				// string + concatenates; the `.` operator is also defined
				// as string-value concatenation (spec.md §4.E "Dot").
				return NewString(a.S + SValue(b)), nil
			case ast.OpMul:
				n, ok := asInt(b)
				if !ok || n < 0 {
					return nil, herror.Newf(herror.Syntax, "string '*' requires a non-negative integer")
				}
				return NewString(strings.Repeat(a.S, int(n))), nil
			}
			return nil, herror.Newf(herror.Syntax, "unsupported operator '%s' for string", op)
		},
		At: func(c, idx *Value) (*Value, error) {
			i, err := IValue(idx)
			if err != nil {
				return nil, err
			}
			if i < 0 || int(i) >= len(c.S) {
				return nil, herror.Newf(herror.Generic, "string index %d out of range", i)
			}
			return NewChar(c.S[i]), nil
		},
		Set: func(c, idx, v *Value) error {
			i, err := IValue(idx)
			if err != nil {
				return err
			}
			if i < 0 || int(i) >= len(c.S) {
				return herror.Newf(herror.Generic, "string index %d out of range", i)
			}
			ch, err := IValue(v)
			if err != nil {
				return err
			}
			b := []byte(c.S)
			b[i] = byte(ch)
			c.S = string(b)
			return nil
		},
		Push: func(c, v *Value) error {
			c.S += SValue(v)
			return nil
		},
	})
}
