package value

import "github.com/hybris-lang/hybris/internal/herror"

// KindRef is the reference/alias variant (spec.md §3 "Reference/alias"):
// every dispatcher derefs through it before reaching a type's own vtable
// (see Deref), so this vtable only needs to cover operations that make
// sense on the alias itself rather than its target — cloning a ref
// produces a fresh alias to the same target, not a copy of the target.
func init() {
	RegisterOps(KindRef, &Ops{
		TypeName: "reference",
		Clone:    func(v *Value) *Value { return NewRef(v.Ref) },
		Children: func(v *Value) []*Value { return []*Value{v.Ref} },
		LValue:   func(v *Value) bool { return LValue(v.Ref) },
		SValue:   func(v *Value) string { return SValue(v.Ref) },
		Cmp: func(a, b *Value) (int, error) {
			if b == nil {
				return 0, herror.New(herror.Syntax, "cannot compare reference with nil")
			}
			return Cmp(a.Ref, b)
		},
	})
}
