package value

import (
	"strings"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/herror"
)

// Vector size vs. capacity (spec.md §3 "Vector": "size is tracked
// separately from capacity") is Go's slice header (len vs. cap) — no
// bespoke bookkeeping is needed on top of it.

func init() {
	RegisterOps(KindVector, &Ops{
		TypeName: "vector",
		Clone: func(v *Value) *Value {
			out := make([]*Value, len(v.Vec))
			for i, e := range v.Vec {
				out[i] = Clone(e)
			}
			return NewVector(out)
		},
		Children: func(v *Value) []*Value { return v.Vec },
		LValue:   func(v *Value) bool { return len(v.Vec) > 0 },
		IValue:   func(v *Value) (int64, error) { return int64(len(v.Vec)), nil },
		SValue: func(v *Value) string {
			parts := make([]string, len(v.Vec))
			for i, e := range v.Vec {
				parts[i] = SValue(e)
			}
			return "[" + strings.Join(parts, ", ") + "]"
		},
		Cmp: func(a, b *Value) (int, error) {
			if b == nil || b.Kind != KindVector {
				return -1, nil
			}
			if len(a.Vec) != len(b.Vec) {
				if len(a.Vec) < len(b.Vec) {
					return -1, nil
				}
				return 1, nil
			}
			for i := range a.Vec {
				c, err := Cmp(a.Vec[i], b.Vec[i])
				if err != nil {
					return 0, err
				}
				if c != 0 {
					return c, nil
				}
			}
			return 0, nil
		},
		BinOp: func(op ast.BinOp, a, b *Value) (*Value, error) {
			if r, ok, err := compareOp(op, a, b); ok {
				return r, err
			}
			if op != ast.OpAdd {
				return nil, herror.Newf(herror.Syntax, "unsupported operator '%s' for vector", op)
			}
			out := make([]*Value, len(a.Vec))
			for i, e := range a.Vec {
				out[i] = Clone(e)
			}
			if b != nil && b.Kind == KindVector {
				// vector + vector concatenates (spec.md §4.A).
				for _, e := range b.Vec {
					out = append(out, Clone(e))
				}
			} else {
				// vector + any-other pushes (spec.md §4.A).
				out = append(out, Clone(b))
			}
			return NewVector(out), nil
		},
		Push: func(c, v *Value) error {
			c.Vec = append(c.Vec, v)
			return nil
		},
		Pop: func(c *Value) (*Value, error) {
			if len(c.Vec) == 0 {
				return nil, herror.New(herror.Generic, "pop on empty vector")
			}
			last := c.Vec[len(c.Vec)-1]
			c.Vec = c.Vec[:len(c.Vec)-1]
			return last, nil
		},
		At: func(c, idx *Value) (*Value, error) {
			i, err := IValue(idx)
			if err != nil {
				return nil, err
			}
			if i < 0 || int(i) >= len(c.Vec) {
				return nil, herror.Newf(herror.Generic, "vector index %d out of range", i)
			}
			return c.Vec[i], nil
		},
		Set: func(c, idx, v *Value) error {
			i, err := IValue(idx)
			if err != nil {
				return err
			}
			if i < 0 || int(i) > len(c.Vec) {
				return herror.Newf(herror.Generic, "vector index %d out of range", i)
			}
			if int(i) == len(c.Vec) {
				c.Vec = append(c.Vec, v)
				return nil
			}
			c.Vec[i] = v
			return nil
		},
		Remove: func(c, idx *Value) (*Value, error) {
			i, err := IValue(idx)
			if err != nil {
				return nil, err
			}
			if i < 0 || int(i) >= len(c.Vec) {
				return nil, herror.Newf(herror.Generic, "vector index %d out of range", i)
			}
			removed := c.Vec[i]
			c.Vec = append(c.Vec[:i], c.Vec[i+1:]...)
			return removed, nil
		},
	})
}
